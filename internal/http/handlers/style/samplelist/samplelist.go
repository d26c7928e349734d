// Package samplelist реализует HTTP-обработчик списка образцов текста.
package samplelist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/middlewarectx"
	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/models"
	"github.com/novawriterhq/novawriter/internal/services/style"
)

// Service описывает интерфейс бизнес-логики списка образцов.
type Service interface {
	ListSamples(ctx context.Context, user *models.User) ([]*models.WritingSample, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.style.samplelist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, _ := middlewarectx.UserFromContext(r.Context())

	samples, err := h.service.ListSamples(r.Context(), user)
	if err != nil {
		if errors.Is(err, style.ErrTierRequired) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to list writing samples", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list writing samples"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"samples": samples,
	}))
}
