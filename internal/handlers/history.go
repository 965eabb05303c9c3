package handlers

import (
	"net/http"
	"strconv"
	"time"

	"notesqa/internal/storage"
)

// HistoryHandler serves a user's past question/answer exchanges.
type HistoryHandler struct {
	history storage.HistoryStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history storage.HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// HistoryItem mirrors storage.AnswerRecord for the HTTP response.
type HistoryItem struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	NotesPart      string   `json:"notes_part,omitempty"`
	EnrichmentPart string   `json:"enrichment_part,omitempty"`
	Mode           string   `json:"mode"`
	Citations      []string `json:"citations"`
	CreatedAt      string   `json:"created_at"`
}

// HistoryResponse wraps the history list.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
}

// ServeHTTP handles GET /api/v1/history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := userIDFromRequest(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.history.ListByUser(ctx, userID, limit)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load history")
		return
	}

	items := make([]HistoryItem, 0, len(records))
	for _, rec := range records {
		citations := rec.Citations
		if citations == nil {
			citations = []string{}
		}
		items = append(items, HistoryItem{
			ID:             rec.ID,
			Question:       rec.Question,
			Answer:         rec.Answer,
			NotesPart:      rec.NotesPart,
			EnrichmentPart: rec.EnrichmentPart,
			Mode:           rec.Mode,
			Citations:      citations,
			CreatedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Items: items})
}
