package update

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

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Update(ctx context.Context, id, userID string, upd models.DocumentUpdate) (*models.Document, error) {
	args := m.Called(ctx, id, userID, upd)
	doc, _ := args.Get(0).(*models.Document)
	return doc, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func strPtr(s string) *string { return &s }

func TestUpdateHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	currentUser := &models.User{ID: "user-1", Email: "writer@example.com", Role: models.RoleUser}

	updated := &models.Document{
		ID:      "doc-1",
		UserID:  "user-1",
		Title:   "Новая глава",
		Content: "<p>текст</p>",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockDoc        *models.Document
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid update",
			requestBody:    models.DocumentUpdate{Title: strPtr("Новая глава"), Content: strPtr("<p>текст</p>")},
			mockDoc:        updated,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "document not found",
			requestBody:    models.DocumentUpdate{Title: strPtr("Новая глава")},
			mockErr:        storage.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "document not found",
			wantStatus:     "Error",
		},
		{
			name:           "service error",
			requestBody:    models.DocumentUpdate{Title: strPtr("Новая глава")},
			mockErr:        errors.New("storage down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to update document",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockDoc != nil || tt.mockErr != nil {
				serviceMock.On("Update", mock.Anything, "doc-1", "user-1", tt.requestBody.(models.DocumentUpdate)).
					Return(tt.mockDoc, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPatch, "/api/documents/doc-1", bytes.NewReader(bodyBytes))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "doc-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.CurrentUser, currentUser)
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

			if tt.mockDoc != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				doc, ok := data["document"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "Новая глава", doc["title"])
			}

			if tt.mockDoc != nil || tt.mockErr != nil {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
