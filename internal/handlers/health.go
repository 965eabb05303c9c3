package handlers

import (
	"context"
	"net/http"
	"time"

	"notesqa/internal/contextutil"
)

// Pinger reports whether the relational store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CollectionChecker reports whether a vector collection exists.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
}

// HealthHandler reports the service's dependency health.
type HealthHandler struct {
	db         Pinger
	store      CollectionChecker
	collection string
	timeout    time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, store CollectionChecker, collection string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		store:      store,
		collection: collection,
		timeout:    5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/v1/health. Returns 200 when every
// dependency answers, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	logger := contextutil.LoggerFromContext(ctx)

	checks := make(map[string]string)
	var issues []string

	if err := h.db.PingContext(ctx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "unhealthy"
		issues = append(issues, "database unreachable")
	} else {
		checks["database"] = "healthy"
	}

	exists, err := h.store.CollectionExists(ctx, h.collection)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		checks["vector_store"] = "unhealthy"
		issues = append(issues, "vector store unreachable")
	case !exists:
		checks["vector_store"] = "degraded"
		issues = append(issues, "collection missing")
	default:
		checks["vector_store"] = "healthy"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
