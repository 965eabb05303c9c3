package rag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"notesqa/internal/contextutil"
	"notesqa/internal/service"
	"notesqa/internal/storage"
	"notesqa/internal/vectorstore"
)

const (
	defaultK    = 5
	maxK        = 20
	minQuestion = 3
	maxQuestion = 1000
)

// Params holds the retrieval and ranking tuning knobs.
type Params struct {
	// DistanceThreshold is the cosine-distance cutoff for candidates.
	DistanceThreshold float32
	// Ceiling bounds the candidate set size.
	Ceiling int
	// SemanticWeight and LexicalWeight blend vector similarity with
	// keyword overlap into the fused relevance score.
	SemanticWeight float32
	LexicalWeight  float32
	// MMRLambda trades relevance against diversity during selection.
	MMRLambda float32
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		DistanceThreshold: 0.40,
		Ceiling:           30,
		SemanticWeight:    0.8,
		LexicalWeight:     0.2,
		MMRLambda:         0.7,
	}
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    Embedder
	generator   Generator
	vectorStore vectorstore.VectorStore
	collection  string
	chunks      storage.ChunkStore
	history     storage.HistoryStore
	params      Params
	timeout     time.Duration
	markdown    goldmark.Markdown
}

// NewEngine creates a new question-answering engine. timeout bounds each
// Ask operation end to end.
func NewEngine(
	embedder Embedder,
	generator Generator,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunks storage.ChunkStore,
	history storage.HistoryStore,
	params Params,
	timeout time.Duration,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		generator:   generator,
		vectorStore: vectorStore,
		collection:  collection,
		chunks:      chunks,
		history:     history,
		params:      params,
		timeout:     timeout,
		markdown:    goldmark.New(),
	}
}

// Ask answers one question: embed, retrieve, fuse, re-rank, generate
// once, classify provenance, and hand the finished record to history.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req.Question = strings.TrimSpace(req.Question)
	if err := validateRequest(req); err != nil {
		return AskResponse{}, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	logger.InfoContext(ctx, "ask started", "user_id", req.UserID, "k", req.K, "enrich", req.Enrich)

	queryVector, err := e.embedder.EmbedQuery(ctx, req.Question)
	if err != nil {
		return AskResponse{}, e.mapDeadline(ctx, err)
	}

	candidates, err := e.retrieveCandidates(ctx, req.UserID, queryVector)
	if err != nil {
		return AskResponse{}, e.mapDeadline(ctx, err)
	}

	e.scoreCandidates(req.Question, candidates)
	selected := selectMMR(candidates, resolveK(req.K), e.params.MMRLambda)

	logger.InfoContext(ctx, "evidence selected",
		"candidates", len(candidates), "selected", len(selected))

	prompt := buildPrompt(req.Question, selected, req.Enrich)
	result, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return AskResponse{}, e.mapDeadline(ctx, err)
	}

	mode := classifyMode(selected, result)
	citations := extractCitations(selected, result, mode)

	record := &storage.AnswerRecord{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		Question:       req.Question,
		Answer:         result.Text,
		NotesPart:      result.NotesSegment,
		EnrichmentPart: result.EnrichmentSegment,
		Mode:           mode,
		Citations:      citations,
		CreatedAt:      time.Now().UTC(),
	}

	// History is fire-and-forget: a failed append never fails the ask.
	// Detach from the request context so a client disconnect after
	// generation does not lose the record.
	if err := e.history.Append(context.WithoutCancel(ctx), record); err != nil {
		logger.WarnContext(ctx, "failed to append history record", "error", err)
	}

	notesPart, enrichmentPart := "", ""
	if mode == ModeMixed {
		notesPart = result.NotesSegment
		enrichmentPart = result.EnrichmentSegment
	}

	logger.InfoContext(ctx, "ask completed", "mode", mode, "citations", len(citations))

	return AskResponse{
		Answer:         result.Text,
		AnswerHTML:     e.renderHTML(ctx, result.Text),
		Mode:           mode,
		NotesPart:      notesPart,
		EnrichmentPart: enrichmentPart,
		Citations:      citations,
		PDFSources:     citations,
	}, nil
}

// retrieveCandidates issues one nearest-neighbor query, retrying once on
// store failure, truncates at the distance threshold, and joins the
// chunk rows restricted to the user's ready documents.
func (e *ragEngine) retrieveCandidates(ctx context.Context, userID string, queryVector []float32) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	results, err := e.vectorStore.Search(ctx, e.collection, queryVector, e.params.Ceiling, userID)
	if err != nil {
		logger.WarnContext(ctx, "vector search failed, retrying once", "error", err)
		results, err = e.vectorStore.Search(ctx, e.collection, queryVector, e.params.Ceiling, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", service.ErrRetrieval, err)
		}
	}

	// Results arrive ordered by descending similarity; stop at the first
	// entry past the threshold.
	var kept []vectorstore.SearchResult
	var ids []string
	for _, r := range results {
		distance := 1 - r.Score
		if distance > e.params.DistanceThreshold {
			break
		}
		kept = append(kept, r)
		ids = append(ids, r.PointID)
	}

	if len(kept) == 0 {
		return nil, nil
	}

	chunks, err := e.chunks.GetReadyByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrRetrieval, err)
	}

	candidates := make([]Candidate, 0, len(kept))
	for _, r := range kept {
		chunk, ok := chunks[r.PointID]
		if !ok {
			// Not owned by the user or its document is not ready.
			continue
		}
		candidates = append(candidates, Candidate{
			Chunk:    chunk,
			Distance: 1 - r.Score,
			Vector:   r.Vector,
		})
	}
	return candidates, nil
}

// mapDeadline converts a deadline expiry into the timeout error kind;
// every other error already carries its taxonomy.
func (e *ragEngine) mapDeadline(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", service.ErrTimeout, err)
	}
	return err
}

// renderHTML converts the markdown answer to HTML for the response
// payload. Rendering failures degrade to an empty string.
func (e *ragEngine) renderHTML(ctx context.Context, md string) string {
	var buf bytes.Buffer
	if err := e.markdown.Convert([]byte(md), &buf); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to render answer markdown", "error", err)
		return ""
	}
	return buf.String()
}

func validateRequest(req AskRequest) error {
	if req.UserID == "" {
		return &service.ValidationError{Field: "user_id", Message: "is required"}
	}
	question := req.Question
	if len(question) < minQuestion {
		return &service.ValidationError{Field: "question", Message: fmt.Sprintf("must be at least %d characters", minQuestion)}
	}
	if len(question) > maxQuestion {
		return &service.ValidationError{Field: "question", Message: fmt.Sprintf("must be at most %d characters", maxQuestion)}
	}
	return nil
}

// resolveK clamps the caller's evidence-count hint. The hint caps the
// final MMR selection; the retrieval ceiling is unaffected by it.
func resolveK(k int) int {
	if k <= 0 {
		return defaultK
	}
	if k > maxK {
		return maxK
	}
	return k
}
