package storage

import "time"

// Document statuses. Only chunks of "ready" documents participate in
// retrieval; documents still being ingested are invisible to search.
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

// Document represents an uploaded source document. Ingestion (extraction,
// chunking, embedding) is owned by an external collaborator which flips
// the status to ready when the chunks are searchable.
type Document struct {
	ID        string
	UserID    string
	Filename  string
	Status    string
	CreatedAt time.Time
}

// ChunkRecord is one immutable unit of evidence extracted from a document.
// The embedding itself lives in the vector store; this row carries the
// text and provenance metadata.
type ChunkRecord struct {
	ID          string
	DocumentID  string
	Filename    string
	Page        *int
	ContentType string
	Text        string
}

// AnswerRecord is one finished question/answer exchange, appended to the
// user's history. Immutable once written.
type AnswerRecord struct {
	ID             string
	UserID         string
	Question       string
	Answer         string
	NotesPart      string
	EnrichmentPart string
	Mode           string
	Citations      []string
	CreatedAt      time.Time
}
