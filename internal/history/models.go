package history

import "time"

// Record is one dispatched-command row. EmbeddingVector holds the
// base64-encoded, little-endian float32 embedding, or "" if none was
// computed (embeddings disabled, or not yet back from the embedding
// service at insert time).
type Record struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	UserInput        string `gorm:"not null"`
	GeneratedCommand string `gorm:"not null"`
	OriginalCommand  string
	Explanation      string
	Output           string
	Error            string
	ServerProfile    string    `gorm:"index"`
	IsSuccess        bool      `gorm:"index"`
	WasEdited        bool
	ExecutedAt       time.Time `gorm:"index"`
	EmbeddingVector  string    `gorm:"type:text"`
	UseCount         int       `gorm:"not null;default:0"`
}

func (Record) TableName() string { return "history_records" }

// SearchResult is one matched row returned by any of the search methods,
// annotated with the match method and score used to find it.
type SearchResult struct {
	Record
	Method     string  // "text", "vector", or "fts"
	Similarity float64 // cosine similarity, for vector matches
	Rank       float64 // BM25 rank (more negative is a better match in SQLite FTS5), for text matches
}

// FrequentCommand is the derived, on-demand aggregation over successful
// history rows, grouped by (generated_command, server_profile).
type FrequentCommand struct {
	Command        string
	ServerProfile  string
	Description    string
	Explanation    string
	SumUseCount    int
	ExecutionCount int
	LastUsed       time.Time
}

// Statistics summarizes the whole store.
type Statistics struct {
	Total          int
	SuccessCount   int
	PerProfile     map[string]int
}
