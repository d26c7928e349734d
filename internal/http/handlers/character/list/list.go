// Package list реализует HTTP-обработчик списка персонажей
// с необязательными фильтрами по проекту и документу.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
)

// Service описывает интерфейс бизнес-логики списка персонажей.
type Service interface {
	List(ctx context.Context, userID string, filter models.CharacterFilter) ([]*models.Character, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.character.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, _ := middlewarectx.UserFromContext(r.Context())

	var filter models.CharacterFilter
	if v := r.URL.Query().Get("projectId"); v != "" {
		filter.ProjectID = &v
	}
	if v := r.URL.Query().Get("documentId"); v != "" {
		filter.DocumentID = &v
	}

	characters, err := h.service.List(r.Context(), user.ID, filter)
	if err != nil {
		log.Error("failed to list characters", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list characters"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"characters": characters,
	}))
}
