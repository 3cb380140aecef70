package exportcsv

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenibo-dev/zenibo/internal/export"
	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Export(ctx context.Context, bookID, userID int, month time.Time, format string) (*export.Result, error) {
	args := m.Called(ctx, bookID, userID, month, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Result), args.Error(1)
}

func TestExportHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	june := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		url             string
		bookID          string
		userID          int
		setupMock       func(*MockService)
		expectedStatus  int
		expectedBody    string
		expectedHeaders map[string]string
	}{
		{
			name:   "csv download",
			url:    "/books/3/export?month=2025-06&format=mf",
			bookID: "3",
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Export", mock.Anything, 3, 7, june, "mf").
					Return(&export.Result{
						FileName: "Sato Design_2025-06_mf.csv",
						Format:   "mf",
						Data:     []byte("date,amount\n2025-06-15,120000\n"),
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "2025-06-15,120000",
			expectedHeaders: map[string]string{
				"Content-Type":        "text/csv; charset=utf-8",
				"Content-Disposition": `attachment; filename="Sato Design_2025-06_mf.csv"`,
			},
		},
		{
			name:           "missing month",
			url:            "/books/3/export",
			bookID:         "3",
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"month must be in YYYY-MM form"}`,
		},
		{
			name:           "no user in context",
			url:            "/books/3/export?month=2025-06",
			bookID:         "3",
			userID:         0,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:   "book not found",
			url:    "/books/9/export?month=2025-06",
			bookID: "9",
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Export", mock.Anything, 9, 7, june, "").
					Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"book not found"}`,
		},
		{
			name:   "empty month",
			url:    "/books/3/export?month=2025-06",
			bookID: "3",
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Export", mock.Anything, 3, 7, june, "").
					Return(nil, export.ErrNoData)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"no transactions in requested month"}`,
		},
		{
			name:   "unknown format",
			url:    "/books/3/export?month=2025-06&format=quickbooks",
			bookID: "3",
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Export", mock.Anything, 3, 7, june, "quickbooks").
					Return(nil, export.ErrUnknownFormat)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"unknown export format"}`,
		},
		{
			name:   "format above plan",
			url:    "/books/3/export?month=2025-06&format=yayoi",
			bookID: "3",
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Export", mock.Anything, 3, 7, june, "yayoi").
					Return(nil, models.ErrForbiddenFormat)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"export format not allowed on current plan"}`,
		},
		{
			name:   "service failure",
			url:    "/books/3/export?month=2025-06",
			bookID: "3",
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Export", mock.Anything, 3, 7, june, "").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not export month"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			ctx := req.Context()
			if tt.userID != 0 {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.userID)
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.bookID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			for key, value := range tt.expectedHeaders {
				assert.Equal(t, value, w.Header().Get(key))
			}

			mockService.AssertExpectations(t)
		})
	}
}
