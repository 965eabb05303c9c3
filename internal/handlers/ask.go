package handlers

import (
	"encoding/json"
	"net/http"

	"notesqa/internal/rag"
)

const maxAskBodyBytes = 64 << 10

// AskHandler handles question-answering requests.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest is the HTTP request payload. It mirrors rag.AskRequest but
// is defined here for HTTP layer separation; the user comes from the
// X-User-ID header, never the body.
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
	Enrich   bool   `json:"enrich,omitempty"`
}

// ServeHTTP handles POST /api/v1/ask.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := userIDFromRequest(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	var req AskRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.engine.Ask(ctx, rag.AskRequest{
		UserID:   userID,
		Question: req.Question,
		K:        req.K,
		Enrich:   req.Enrich,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
