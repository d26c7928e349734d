// Package userdelete реализует HTTP-обработчик мягкого удаления
// пользователя администратором. Удаление себя, владельца сайта и
// других администраторов блокируется с записью в журнал аудита.
package userdelete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/services/admin"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// Service описывает интерфейс бизнес-логики удаления пользователя.
type Service interface {
	SoftDelete(ctx context.Context, performer *models.User, userID string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userdelete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	performer, _ := middlewarectx.UserFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	if err := h.service.SoftDelete(r.Context(), performer, userID); err != nil {
		switch {
		case errors.Is(err, admin.ErrDeleteSelf),
			errors.Is(err, admin.ErrDeleteSiteOwner),
			errors.Is(err, admin.ErrDeleteAdmin):
			log.Warn("delete blocked", slog.String("userId", userID), sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, storage.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to delete user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete user"))
		}
		return
	}

	log.Info("user soft deleted", slog.String("userId", userID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": true,
	}))
}
