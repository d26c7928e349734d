// Package useraudit реализует HTTP-обработчик чтения журнала аудита
// по одному пользователю.
package useraudit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
)

// Service описывает интерфейс бизнес-логики журнала аудита пользователя.
type Service interface {
	AuditLogsForUser(ctx context.Context, userID string, limit int) ([]*models.AuditLog, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.useraudit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.AuditLogsForUser(r.Context(), userID, limit)
	if err != nil {
		log.Error("failed to list audit logs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list audit logs"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"logs": entries,
	}))
}
