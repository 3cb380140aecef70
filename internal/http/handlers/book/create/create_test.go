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
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID int, req models.DummyBook) (int, error) {
	args := m.Called(ctx, userID, req)
	return args.Int(0), args.Error(1)
}

func TestCreateBookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		userID         int
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "book created",
			requestBody: models.DummyBook{
				BusinessName:   "Sato Design",
				AccountName:    "Cash",
				OpeningBalance: 50000,
				ExportFormat:   "yayoi",
			},
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 7, mock.AnythingOfType("models.DummyBook")).
					Return(3, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"book_id":3`,
		},
		{
			name:           "malformed json",
			requestBody:    "not a json",
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "missing required fields",
			requestBody: models.DummyBook{
				OpeningBalance: 100,
			},
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field BusinessName is a required field`,
		},
		{
			name: "unknown export format",
			requestBody: models.DummyBook{
				BusinessName: "Sato Design",
				AccountName:  "Cash",
				ExportFormat: "quickbooks",
			},
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field ExportFormat`,
		},
		{
			name: "no user in context",
			requestBody: models.DummyBook{
				BusinessName: "Sato Design",
				AccountName:  "Cash",
			},
			userID:         0,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name: "plan limit reached",
			requestBody: models.DummyBook{
				BusinessName: "Second Shop",
				AccountName:  "Cash",
			},
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 7, mock.AnythingOfType("models.DummyBook")).
					Return(0, models.ErrLimitExceeded)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"book limit reached on current plan"}`,
		},
		{
			name: "service failure",
			requestBody: models.DummyBook{
				BusinessName: "Sato Design",
				AccountName:  "Cash",
			},
			userID: 7,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, 7, mock.AnythingOfType("models.DummyBook")).
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create book"}`,
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

			req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.userID != 0 {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.userID)
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
