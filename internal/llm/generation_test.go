package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"notesqa/internal/keypool"
	"notesqa/internal/service"
)

func newGenerationServer(t *testing.T, respond func(w http.ResponseWriter, key string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		respond(w, key)
	}))
}

func writeChatCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

func newTestGenerator(t *testing.T, srv *httptest.Server, keys []string) *GenerationClient {
	t.Helper()
	pool, err := keypool.New(keys, time.Hour)
	if err != nil {
		t.Fatalf("keypool.New: %v", err)
	}
	return NewGenerationClient(pool, srv.URL+"/v1", "test-model")
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	srv := newGenerationServer(t, func(w http.ResponseWriter, key string) {
		writeChatCompletion(w, "unused")
	})
	defer srv.Close()

	client := newTestGenerator(t, srv, []string{"k1"})

	_, err := client.Generate(context.Background(), "  ")
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateParsesStructuredOutput(t *testing.T) {
	srv := newGenerationServer(t, func(w http.ResponseWriter, key string) {
		writeChatCompletion(w, "From notes. [Source: physics.pdf]\n"+EnrichmentMarker+"\nExtra context.")
	})
	defer srv.Close()

	client := newTestGenerator(t, srv, []string{"k1"})

	result, err := client.Generate(context.Background(), "explain momentum")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.NotesSegment != "From notes." {
		t.Errorf("unexpected notes segment: %q", result.NotesSegment)
	}
	if result.EnrichmentSegment != "Extra context." {
		t.Errorf("unexpected enrichment segment: %q", result.EnrichmentSegment)
	}
	if len(result.CitedFilenames) != 1 || result.CitedFilenames[0] != "physics.pdf" {
		t.Errorf("unexpected citations: %v", result.CitedFilenames)
	}
}

func TestGenerateRotatesOnQuotaSignal(t *testing.T) {
	srv := newGenerationServer(t, func(w http.ResponseWriter, key string) {
		if key == "k1" {
			writeQuotaError(w)
			return
		}
		writeChatCompletion(w, "answer from the second key")
	})
	defer srv.Close()

	client := newTestGenerator(t, srv, []string{"k1", "k2"})

	result, err := client.Generate(context.Background(), "rotate please")
	if err != nil {
		t.Fatalf("expected rotation to succeed, got %v", err)
	}
	if result.Text != "answer from the second key" {
		t.Errorf("unexpected answer: %q", result.Text)
	}
}

func TestGenerateDoesNotRetryNonQuotaFailures(t *testing.T) {
	var calls atomic.Int32
	srv := newGenerationServer(t, func(w http.ResponseWriter, key string) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	client := newTestGenerator(t, srv, []string{"k1", "k2"})

	_, err := client.Generate(context.Background(), "will fail")
	if !errors.Is(err, service.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("generation must not be retried, saw %d calls", calls.Load())
	}
}

func TestGenerateSurfacesQuotaExhausted(t *testing.T) {
	srv := newGenerationServer(t, func(w http.ResponseWriter, key string) {
		writeQuotaError(w)
	})
	defer srv.Close()

	client := newTestGenerator(t, srv, []string{"k1", "k2"})

	_, err := client.Generate(context.Background(), "exhaust everything")
	if !errors.Is(err, service.ErrQuotaExhausted) {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
}
