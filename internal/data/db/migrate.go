package db

import (
	"fmt"

	types "github.com/yungbote/examgenius-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates indexes gorm tags cannot express on every dialect.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []string{
		// at most one in-progress attempt per (user, test)
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempt_one_active ON attempt (user_id, test_id) WHERE status = 'in_progress'`,
		`CREATE INDEX IF NOT EXISTS idx_test_question_order ON test_question (test_id, sequence_order)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_question_order ON ai_generated_question (session_id, sequence_order)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
