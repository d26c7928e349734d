package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/services/assist"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Suggest(ctx context.Context, user *models.User, prompt, content string) (string, error) {
	args := m.Called(ctx, user, prompt, content)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSuggestHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	proUser := &models.User{ID: "user-1", Email: "writer@example.com", SubscriptionTier: models.TierPro}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockSuggestion string
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid request",
			requestBody:    Request{Prompt: "Продолжи сцену", Content: "<p>Дождь шёл третий день.</p>"},
			mockSuggestion: "Дождь перестал только к утру.",
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "validation error - missing prompt",
			requestBody:    Request{Content: "<p>текст</p>"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field Prompt is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "tier too low",
			requestBody:    Request{Prompt: "Продолжи сцену"},
			mockErr:        assist.ErrProRequired,
			wantStatusCode: http.StatusForbidden,
			wantError:      assist.ErrProRequired.Error(),
			wantStatus:     "Error",
		},
		{
			name:           "provider error",
			requestBody:    Request{Prompt: "Продолжи сцену"},
			mockErr:        errors.New("provider timeout"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to get suggestion",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockSuggestion != "" || tt.mockErr != nil {
				body := tt.requestBody.(Request)
				serviceMock.On("Suggest", mock.Anything, proUser, body.Prompt, body.Content).
					Return(tt.mockSuggestion, tt.mockErr).Once()
			}

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/ai/assist", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.CurrentUser, proUser)
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.mockSuggestion != "" {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.mockSuggestion, data["suggestion"])
			}

			if tt.mockSuggestion != "" || tt.mockErr != nil {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
