// Package suggest реализует HTTP-обработчик подсказок ИИ-помощника.
// Доступно только тарифу Pro.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/services/assist"
)

// Request — входные данные для подсказки
type Request struct {
	Prompt  string `json:"prompt" validate:"required"`
	Content string `json:"content"`
}

// Service описывает интерфейс бизнес-логики подсказок.
type Service interface {
	Suggest(ctx context.Context, user *models.User, prompt, content string) (string, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assist.suggest"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, _ := middlewarectx.UserFromContext(r.Context())

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	suggestion, err := h.service.Suggest(r.Context(), user, req.Prompt, req.Content)
	if err != nil {
		if errors.Is(err, assist.ErrProRequired) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to get suggestion", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get suggestion"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"suggestion": suggestion,
	}))
}
