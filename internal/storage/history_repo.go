package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_history_store.go -package=mocks notesqa/internal/storage HistoryStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// HistoryStore defines the append-only Q&A history operations.
type HistoryStore interface {
	// Append persists one finished answer record. The record is immutable
	// once written.
	Append(ctx context.Context, record *AnswerRecord) error
	// ListByUser returns the user's history, most recent first.
	ListByUser(ctx context.Context, userID string, limit int) ([]AnswerRecord, error)
}

// HistoryRepo provides Q&A history operations backed by SQLite.
// It implements the HistoryStore interface.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Append persists one answer record. record.ID must be set (UUID) before
// calling this method.
func (r *HistoryRepo) Append(ctx context.Context, record *AnswerRecord) error {
	citations, err := json.Marshal(record.Citations)
	if err != nil {
		return fmt.Errorf("failed to encode citations: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO qa_history (id, user_id, question, answer, notes_part, enrichment_part, mode, citations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.Question, record.Answer,
		record.NotesPart, record.EnrichmentPart, record.Mode, string(citations), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// ListByUser returns up to limit records for a user, most recent first.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]AnswerRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, question, answer, notes_part, enrichment_part, mode, citations, created_at
		 FROM qa_history WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []AnswerRecord
	for rows.Next() {
		var record AnswerRecord
		var citations string
		if err := rows.Scan(&record.ID, &record.UserID, &record.Question, &record.Answer,
			&record.NotesPart, &record.EnrichmentPart, &record.Mode, &citations, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &record.Citations); err != nil {
			return nil, fmt.Errorf("failed to decode citations: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
