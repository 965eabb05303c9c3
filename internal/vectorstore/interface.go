package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks notesqa/internal/vectorstore VectorStore

import "context"

// SearchResult represents one nearest-neighbor hit. Score is the cosine
// similarity reported by the store (higher is closer); Vector is the
// stored embedding, returned so re-ranking can compute pairwise
// similarities without re-embedding.
type SearchResult struct {
	PointID string
	Score   float32
	Vector  []float32
	Meta    map[string]any
}

// VectorStore defines the nearest-neighbor operations the core depends on.
// Point ingestion is owned by the ingestion collaborator and is not part
// of this contract.
type VectorStore interface {
	// Search returns up to limit hits for the query vector, restricted to
	// points owned by the given user, ordered by descending similarity.
	Search(ctx context.Context, collection string, query []float32, limit int, userID string) ([]SearchResult, error)

	// DeleteByDocument removes every point belonging to a document.
	DeleteByDocument(ctx context.Context, collection, documentID string) error
}
