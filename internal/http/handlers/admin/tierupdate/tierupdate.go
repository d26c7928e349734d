// Package tierupdate реализует HTTP-обработчик смены тарифа пользователя
// администратором. Тариф владельца сайта защищён от изменения.
package tierupdate

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

// Request — новый тариф пользователя
type Request struct {
	Tier string `json:"tier" validate:"required,oneof=free basic pro"`
}

// Service описывает интерфейс бизнес-логики смены тарифа.
type Service interface {
	UpdateTier(ctx context.Context, performer *models.User, userID, tier string) (*models.User, error)
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
	const op = "handlers.admin.tierupdate"

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
		render.JSON(w, r, response.Error("Invalid subscription tier"))
		return
	}

	user, err := h.service.UpdateTier(r.Context(), performer, userID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, admin.ErrInvalidTier):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, admin.ErrOwnerTier):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, storage.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update subscription tier", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update subscription tier"))
		}
		return
	}

	log.Info("subscription tier updated",
		slog.String("userId", userID), slog.String("tier", req.Tier))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user.Public(),
	}))
}
