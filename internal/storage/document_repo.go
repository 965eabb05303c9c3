package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks notesqa/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"

	"notesqa/internal/service"
)

// DocumentStore defines document registry operations.
type DocumentStore interface {
	// GetByID returns a document scoped to its owner.
	// Returns service.ErrNotFound when absent or owned by someone else.
	GetByID(ctx context.Context, userID, id string) (*Document, error)
	// ListByUser returns the user's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// Delete removes a document; chunk rows cascade.
	Delete(ctx context.Context, userID, id string) error
}

// DocumentRepo provides document operations backed by SQLite.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetByID returns a document owned by the user.
func (r *DocumentRepo) GetByID(ctx context.Context, userID, id string) (*Document, error) {
	var doc Document
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, filename, status, created_at FROM documents WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.Status, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// ListByUser returns all documents for a user, newest first.
func (r *DocumentRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, filename, status, created_at FROM documents WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.Status, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// Delete removes a document owned by the user. Chunks cascade via the
// foreign key. Returns service.ErrNotFound when nothing was deleted.
func (r *DocumentRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return service.ErrNotFound
	}
	return nil
}
