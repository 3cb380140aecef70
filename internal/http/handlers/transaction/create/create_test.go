package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, bookID, userID int, req models.DummyTransaction) (int, error) {
	args := m.Called(ctx, bookID, userID, req)
	return args.Int(0), args.Error(1)
}

func TestCreateTransactionHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := models.DummyTransaction{
		Date:        "2025-06-15",
		Type:        models.TypeIncome,
		Description: "Website design fee",
		ClientName:  "Tanaka Shoten",
		Amount:      120000,
	}

	tests := []struct {
		name           string
		url            string
		requestBody    interface{}
		userID         int
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "transaction recorded",
			url:         "/books/3/transactions",
			requestBody: validBody,
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 3, 7, mock.AnythingOfType("models.DummyTransaction")).
					Return(42, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"transaction_id":42`,
		},
		{
			name:           "malformed book id",
			url:            "/books/abc/transactions",
			requestBody:    validBody,
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name:           "malformed json",
			url:            "/books/3/transactions",
			requestBody:    "not a json",
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "bad date format",
			url:  "/books/3/transactions",
			requestBody: models.DummyTransaction{
				Date:        "15/06/2025",
				Type:        models.TypeIncome,
				Description: "Website design fee",
				Amount:      120000,
			},
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Date can contain only date in format 2006-01-02`,
		},
		{
			name: "bad type",
			url:  "/books/3/transactions",
			requestBody: models.DummyTransaction{
				Date:        "2025-06-15",
				Type:        "transfer",
				Description: "Website design fee",
				Amount:      120000,
			},
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Type must be one of: income expense`,
		},
		{
			name:           "no user in context",
			url:            "/books/3/transactions",
			requestBody:    validBody,
			userID:         0,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "book not owned",
			url:         "/books/9/transactions",
			requestBody: validBody,
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 9, 7, mock.AnythingOfType("models.DummyTransaction")).
					Return(0, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"book not found"}`,
		},
		{
			name:        "monthly ceiling reached",
			url:         "/books/3/transactions",
			requestBody: validBody,
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 3, 7, mock.AnythingOfType("models.DummyTransaction")).
					Return(0, models.ErrLimitExceeded)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"monthly transaction limit reached on current plan"}`,
		},
		{
			name:        "service failure",
			url:         "/books/3/transactions",
			requestBody: validBody,
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 3, 7, mock.AnythingOfType("models.DummyTransaction")).
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not record transaction"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.userID != 0 {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.userID)
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			bookID := strings.TrimSuffix(strings.TrimPrefix(tt.url, "/books/"), "/transactions")
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", bookID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
