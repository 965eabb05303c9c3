package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

type fakeChecker struct {
	exists bool
	err    error
}

func (f fakeChecker) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, f.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         fakePinger
		store      fakeChecker
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all healthy",
			db:         fakePinger{},
			store:      fakeChecker{exists: true},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "database down",
			db:         fakePinger{err: errors.New("closed")},
			store:      fakeChecker{exists: true},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
		{
			name:       "vector store down",
			db:         fakePinger{},
			store:      fakeChecker{err: errors.New("unreachable")},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
		{
			name:       "collection missing",
			db:         fakePinger{},
			store:      fakeChecker{exists: false},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			NewHealthHandler(tt.db, tt.store, "notes").ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("health status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Timestamp == "" || len(resp.Checks) != 2 {
				t.Errorf("incomplete response: %+v", resp)
			}
		})
	}
}
