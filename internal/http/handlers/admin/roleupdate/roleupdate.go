// Package roleupdate реализует HTTP-обработчик смены роли пользователя
// администратором. Роль владельца сайта защищена от изменения.
package roleupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/services/admin"
	"github.com/novawriterhq/novawriter/internal/storage"
)

// Request — новая роль пользователя
type Request struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// Service описывает интерфейс бизнес-логики смены роли.
type Service interface {
	UpdateRole(ctx context.Context, performer *models.User, userID, role string) (*models.User, error)
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
	const op = "handlers.admin.roleupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	performer, _ := middlewarectx.UserFromContext(r.Context())
	userID := chi.URLParam(r, "id")

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
		render.JSON(w, r, response.Error("Invalid role"))
		return
	}

	user, err := h.service.UpdateRole(r.Context(), performer, userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrInvalidRole):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, admin.ErrOwnerRole):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, storage.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update role", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update role"))
		}
		return
	}

	log.Info("role updated", slog.String("userId", userID), slog.String("role", req.Role))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user.Public(),
	}))
}
