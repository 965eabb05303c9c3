package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"notesqa/internal/contextutil"
	"notesqa/internal/storage"
	"notesqa/internal/vectorstore"
)

// DocumentsHandler lists and deletes a user's documents. Deleting a
// document removes its vectors first so a half-finished delete can only
// leave orphaned rows, never orphaned search hits.
type DocumentsHandler struct {
	documents   storage.DocumentStore
	vectorStore vectorstore.VectorStore
	collection  string
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documents storage.DocumentStore, vectorStore vectorstore.VectorStore, collection string) *DocumentsHandler {
	return &DocumentsHandler{
		documents:   documents,
		vectorStore: vectorStore,
		collection:  collection,
	}
}

// DocumentItem mirrors storage.Document for the HTTP response.
type DocumentItem struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// DocumentsResponse wraps the document list.
type DocumentsResponse struct {
	Items []DocumentItem `json:"items"`
}

// List handles GET /api/v1/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := userIDFromRequest(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	docs, err := h.documents.ListByUser(ctx, userID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}

	items := make([]DocumentItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, DocumentItem{
			ID:        d.ID,
			Filename:  d.Filename,
			Status:    d.Status,
			CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, DocumentsResponse{Items: items})
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID := userIDFromRequest(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	documentID := chi.URLParam(r, "id")
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	// Ownership check before touching anything.
	if _, err := h.documents.GetByID(ctx, userID, documentID); err != nil {
		handleServiceError(ctx, w, err, "Failed to load document")
		return
	}

	if err := h.vectorStore.DeleteByDocument(ctx, h.collection, documentID); err != nil {
		logger.ErrorContext(ctx, "failed to delete document vectors",
			"document_id", documentID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	if err := h.documents.Delete(ctx, userID, documentID); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete document")
		return
	}

	logger.InfoContext(ctx, "document deleted", "document_id", documentID)
	w.WriteHeader(http.StatusNoContent)
}
