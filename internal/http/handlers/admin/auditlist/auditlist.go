// Package auditlist реализует HTTP-обработчик чтения журнала аудита.
// Без параметра limit возвращаются последние 100 записей.
package auditlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
)

// Service описывает интерфейс бизнес-логики журнала аудита.
type Service interface {
	AuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.auditlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.AuditLogs(r.Context(), limit)
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
