package history

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens (creating if necessary) the history database at dbPath, runs
// auto-migration for the primary table, and creates the FTS5 virtual table
// plus the write triggers that keep it in sync, if they don't already
// exist.
func Init(dbPath string) error {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create history store directory: %w", err)
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	if err := DB.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("auto-migrate history_records: %w", err)
	}

	return createFTSIndex()
}

// Close releases the underlying database handle.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// createFTSIndex creates the external-content FTS5 virtual table over the
// text columns plus the triggers that keep it synchronized with
// history_records on insert/update/delete. Using idempotent "IF NOT
// EXISTS" DDL lets Init be called against an already-migrated database.
func createFTSIndex() error {
	stmts := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS history_fts USING fts5(
			user_input, generated_command, explanation, output,
			content='history_records', content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS history_records_ai AFTER INSERT ON history_records BEGIN
			INSERT INTO history_fts(rowid, user_input, generated_command, explanation, output)
			VALUES (new.id, new.user_input, new.generated_command, new.explanation, new.output);
		END`,
		`CREATE TRIGGER IF NOT EXISTS history_records_ad AFTER DELETE ON history_records BEGIN
			INSERT INTO history_fts(history_fts, rowid, user_input, generated_command, explanation, output)
			VALUES ('delete', old.id, old.user_input, old.generated_command, old.explanation, old.output);
		END`,
		`CREATE TRIGGER IF NOT EXISTS history_records_au AFTER UPDATE ON history_records BEGIN
			INSERT INTO history_fts(history_fts, rowid, user_input, generated_command, explanation, output)
			VALUES ('delete', old.id, old.user_input, old.generated_command, old.explanation, old.output);
			INSERT INTO history_fts(rowid, user_input, generated_command, explanation, output)
			VALUES (new.id, new.user_input, new.generated_command, new.explanation, new.output);
		END`,
	}
	for _, stmt := range stmts {
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create fts index: %w", err)
		}
	}
	return nil
}
