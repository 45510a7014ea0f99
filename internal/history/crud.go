package history

import (
	"fmt"

	"gorm.io/gorm"
)

// Add inserts a new history row, optionally with its embedding already
// computed. Returns the new row's ID. The FTS index is kept in sync by the
// history_records_ai trigger.
func Add(r *Record, embedding []float32) (uint, error) {
	if len(embedding) > 0 {
		r.EmbeddingVector = serializeVector(embedding)
	}
	if err := DB.Create(r).Error; err != nil {
		return 0, fmt.Errorf("insert history record: %w", err)
	}
	return r.ID, nil
}

// UpdateEmbedding stores a freshly computed embedding for an existing row,
// for example after an async embedding request completes.
func UpdateEmbedding(id uint, embedding []float32) error {
	return DB.Model(&Record{}).Where("id = ?", id).
		Update("embedding_vector", serializeVector(embedding)).Error
}

// IncrementUseCount bumps a row's use_count, called whenever a resolver
// cache hit reuses it.
func IncrementUseCount(id uint) error {
	return DB.Model(&Record{}).Where("id = ?", id).
		UpdateColumn("use_count", gorm.Expr("use_count + 1")).Error
}

// Get fetches a single row by ID.
func Get(id uint) (*Record, error) {
	var r Record
	if err := DB.First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}
