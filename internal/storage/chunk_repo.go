package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks notesqa/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ChunkStore defines the chunk lookups the retrieval pipeline depends on.
type ChunkStore interface {
	// GetReadyByIDs returns the chunks with the given IDs that belong to
	// ready documents owned by the user, keyed by chunk ID. IDs that fail
	// the ownership or readiness check are simply absent from the result.
	GetReadyByIDs(ctx context.Context, userID string, ids []string) (map[string]*ChunkRecord, error)
}

// ChunkRepo provides chunk operations backed by SQLite.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// GetReadyByIDs returns chunks for the given IDs, restricted to documents
// in ready state owned by the user.
func (r *ChunkRepo) GetReadyByIDs(ctx context.Context, userID string, ids []string) (map[string]*ChunkRecord, error) {
	result := make(map[string]*ChunkRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(
		`SELECT c.id, c.document_id, c.filename, c.page, c.content_type, c.text
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE d.user_id = ? AND d.status = ? AND c.id IN (%s)`,
		placeholders,
	)

	args := make([]any, 0, len(ids)+2)
	args = append(args, userID, DocumentStatusReady)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var chunk ChunkRecord
		var page sql.NullInt64
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Filename, &page, &chunk.ContentType, &chunk.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if page.Valid {
			p := int(page.Int64)
			chunk.Page = &p
		}
		result[chunk.ID] = &chunk
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}
