package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"notesqa/internal/storage"
	storagemocks "notesqa/internal/storage/mocks"
)

func doHistory(t *testing.T, store storage.HistoryStore, target, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	NewHistoryHandler(store).ServeHTTP(rec, req)
	return rec
}

func TestHistoryHandlerListsRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockHistoryStore(ctrl)

	created := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	store.EXPECT().
		ListByUser(gomock.Any(), "user-1", 0).
		Return([]storage.AnswerRecord{
			{
				ID:        "rec-1",
				UserID:    "user-1",
				Question:  "what produces ATP",
				Answer:    "Mitochondria.",
				Mode:      "notes_only",
				Citations: []string{"bio.pdf"},
				CreatedAt: created,
			},
		}, nil)

	rec := doHistory(t, store, "/api/v1/history", "user-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	item := resp.Items[0]
	if item.ID != "rec-1" || item.Mode != "notes_only" || item.CreatedAt != "2026-02-10T12:00:00Z" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestHistoryHandlerLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockHistoryStore(ctrl)
	store.EXPECT().ListByUser(gomock.Any(), "user-1", 5).Return(nil, nil)

	rec := doHistory(t, store, "/api/v1/history?limit=5", "user-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Items == nil {
		t.Error("items must be an empty array, not null")
	}
}

func TestHistoryHandlerInvalidLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockHistoryStore(ctrl)

	for _, limit := range []string{"abc", "-1", "0"} {
		rec := doHistory(t, store, "/api/v1/history?limit="+limit, "user-1")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestHistoryHandlerRequiresUserHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := doHistory(t, storagemocks.NewMockHistoryStore(ctrl), "/api/v1/history", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHistoryHandlerStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockHistoryStore(ctrl)
	store.EXPECT().ListByUser(gomock.Any(), "user-1", 0).Return(nil, errors.New("db closed"))

	rec := doHistory(t, store, "/api/v1/history", "user-1")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
