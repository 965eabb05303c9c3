package rag

import (
	"context"

	"notesqa/internal/llm"
	"notesqa/internal/storage"
)

// Answer provenance modes.
const (
	// ModeNotesOnly marks an answer grounded entirely in retrieved notes.
	ModeNotesOnly = "notes_only"
	// ModeMixed marks an answer combining notes with model enrichment.
	ModeMixed = "mixed"
	// ModeModelOnly marks an answer produced without any usable notes.
	ModeModelOnly = "model_only"
)

// AskRequest represents one question against a user's notes.
type AskRequest struct {
	// UserID scopes retrieval to the requesting user's documents.
	UserID string
	// Question is the natural-language question text.
	Question string
	// K optionally hints at the desired evidence count. Zero means the
	// default. The hint caps the final selection, never the retrieval
	// ceiling.
	K int
	// Enrich allows the model to supplement the notes with general
	// knowledge, kept in a separate, labeled segment.
	Enrich bool
}

// AskResponse is the finished answer surfaced to the caller.
type AskResponse struct {
	Answer         string   `json:"answer"`
	AnswerHTML     string   `json:"answer_html"`
	Mode           string   `json:"mode"`
	NotesPart      string   `json:"notes_part"`
	EnrichmentPart string   `json:"enrichment_part"`
	Citations      []string `json:"citations"`
	PDFSources     []string `json:"pdf_sources"`
}

// Candidate carries one retrieval hit through scoring and selection.
type Candidate struct {
	Chunk    *storage.ChunkRecord
	Distance float32
	Vector   []float32
	// Lexical is the normalized keyword-overlap score in [0, 1].
	Lexical float32
	// Fused blends semantic similarity with Lexical; it is the relevance
	// term used by MMR selection.
	Fused float32
}

// Embedder turns a query into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces one structured answer for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (llm.GenerationResult, error)
}

// Engine answers questions over a user's indexed documents.
type Engine interface {
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}
