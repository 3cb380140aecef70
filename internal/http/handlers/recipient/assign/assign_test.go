package assign

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

func (m *MockService) ReplaceAssignments(ctx context.Context, id, userID int, req models.DummyAssignments) (*models.Recipient, error) {
	args := m.Called(ctx, id, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipient), args.Error(1)
}

func TestAssignHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		recipientID    string
		requestBody    interface{}
		userID         int
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "assignments replaced",
			recipientID: "5",
			requestBody: models.DummyAssignments{BookIDs: []int{1, 3}},
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("ReplaceAssignments", mock.Anything, 5, 7, mock.AnythingOfType("models.DummyAssignments")).
					Return(&models.Recipient{
						ID:      5,
						UserID:  7,
						Name:    "Accountant",
						Email:   "kaikei@example.jp",
						BookIDs: []int{1, 3},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"BookIDs":[1,3]`,
		},
		{
			name:        "empty list clears assignments",
			recipientID: "5",
			requestBody: models.DummyAssignments{BookIDs: []int{}},
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("ReplaceAssignments", mock.Anything, 5, 7, mock.AnythingOfType("models.DummyAssignments")).
					Return(&models.Recipient{
						ID:     5,
						UserID: 7,
						Name:   "Accountant",
						Email:  "kaikei@example.jp",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "malformed id",
			recipientID:    "abc",
			requestBody:    models.DummyAssignments{BookIDs: []int{1}},
			userID:         7,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
		{
			name:           "no user in context",
			recipientID:    "5",
			requestBody:    models.DummyAssignments{BookIDs: []int{1}},
			userID:         0,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "unknown book in list",
			recipientID: "5",
			requestBody: models.DummyAssignments{BookIDs: []int{99}},
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("ReplaceAssignments", mock.Anything, 5, 7, mock.AnythingOfType("models.DummyAssignments")).
					Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"recipient or book not found"}`,
		},
		{
			name:        "service failure",
			recipientID: "5",
			requestBody: models.DummyAssignments{BookIDs: []int{1}},
			userID:      7,
			setupMock: func(m *MockService) {
				m.On("ReplaceAssignments", mock.Anything, 5, 7, mock.AnythingOfType("models.DummyAssignments")).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not replace assignments"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPut, "/recipients/"+tt.recipientID+"/books", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.userID != 0 {
				ctx = context.WithValue(ctx, middlewarectx.UserID, tt.userID)
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.recipientID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
