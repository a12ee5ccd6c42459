package history

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"demand-planning/internal/storage"
)

type MockHistoryProvider struct {
	mock.Mock
}

func (m *MockHistoryProvider) History(ctx context.Context, limit int) ([]storage.UploadBatch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.UploadBatch), args.Error(1)
}

func TestGetHistory_Success(t *testing.T) {
	provider := new(MockHistoryProvider)
	provider.On("History", mock.Anything, 50).Return([]storage.UploadBatch{{
		ID:              7,
		SubmissionID:    "sub-1",
		Filename:        "tracker.xlsx",
		UploadedAt:      time.Date(2024, time.January, 3, 10, 0, 0, 0, time.UTC),
		RecordsImported: 12,
		Errors:          []string{},
		Warnings:        []string{"Successfully extracted 12 hours records"},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/upload/history", nil)
	rr := httptest.NewRecorder()
	GetHistory(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{
		"id": 7,
		"submissionId": "sub-1",
		"filename": "tracker.xlsx",
		"uploadedAt": "2024-01-03T10:00:00Z",
		"recordsImported": 12,
		"errors": [],
		"warnings": ["Successfully extracted 12 hours records"]
	}]`, rr.Body.String())
}

func TestGetHistory_Error(t *testing.T) {
	provider := new(MockHistoryProvider)
	provider.On("History", mock.Anything, 50).Return(nil, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/api/upload/history", nil)
	rr := httptest.NewRecorder()
	GetHistory(slog.Default(), provider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
