// Package deletedlist реализует HTTP-обработчик списка мягко удалённых
// пользователей для панели администратора.
package deletedlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
)

// Service описывает интерфейс бизнес-логики списка удалённых пользователей.
type Service interface {
	ListDeletedUsers(ctx context.Context) ([]*models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.deletedlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListDeletedUsers(r.Context())
	if err != nil {
		log.Error("failed to list deleted users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list deleted users"))
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": public,
	}))
}
