package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notesqa/internal/rag"
	"notesqa/internal/service"
)

type fakeEngine struct {
	resp rag.AskResponse
	err  error
	got  rag.AskRequest
}

func (f *fakeEngine) Ask(ctx context.Context, req rag.AskRequest) (rag.AskResponse, error) {
	f.got = req
	return f.resp, f.err
}

func doAsk(t *testing.T, engine rag.Engine, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	NewAskHandler(engine).ServeHTTP(rec, req)
	return rec
}

func TestAskHandlerSuccess(t *testing.T) {
	engine := &fakeEngine{resp: rag.AskResponse{
		Answer:    "Mitochondria produce ATP.",
		Mode:      "notes_only",
		Citations: []string{"bio.pdf"},
	}}

	rec := doAsk(t, engine, `{"question":"what produces ATP","k":3,"enrich":true}`, "user-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if engine.got.UserID != "user-1" || engine.got.K != 3 || !engine.got.Enrich {
		t.Errorf("request not forwarded: %+v", engine.got)
	}

	var resp rag.AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "Mitochondria produce ATP." || resp.Mode != "notes_only" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAskHandlerRequiresUserHeader(t *testing.T) {
	engine := &fakeEngine{}
	rec := doAsk(t, engine, `{"question":"valid question"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if engine.got.Question != "" {
		t.Error("engine must not be called without a user")
	}
}

func TestAskHandlerInvalidBody(t *testing.T) {
	rec := doAsk(t, &fakeEngine{}, `{not json`, "user-1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAskHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "question", Message: "too short"}, http.StatusBadRequest},
		{"quota", service.ErrQuotaExhausted, http.StatusTooManyRequests},
		{"retrieval", service.WrapError(service.ErrRetrieval, "qdrant down"), http.StatusServiceUnavailable},
		{"embedding", service.WrapError(service.ErrEmbedding, "dim mismatch"), http.StatusBadGateway},
		{"generation", service.WrapError(service.ErrGeneration, "upstream 500"), http.StatusBadGateway},
		{"timeout", service.ErrTimeout, http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAsk(t, &fakeEngine{err: tt.err}, `{"question":"valid question"}`, "user-1")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error == "" {
				t.Error("error body must carry a message")
			}
		})
	}
}

func TestAskHandlerValidationMessageSurvives(t *testing.T) {
	rec := doAsk(t, &fakeEngine{err: &service.ValidationError{Field: "question", Message: "must be at least 3 characters"}},
		`{"question":"hi"}`, "user-1")

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(body.Error, "question") {
		t.Errorf("expected the field name in %q", body.Error)
	}
}
