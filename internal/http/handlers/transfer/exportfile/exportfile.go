// Package exportfile реализует HTTP-обработчик экспорта: из заголовка
// и HTML-содержимого собирается файл запрошенного формата и отдаётся
// потоком с заголовком attachment.
package exportfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/services/document"
)

// Request — заголовок и содержимое экспортируемого документа
type Request struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

// Service описывает интерфейс бизнес-логики экспорта.
type Service interface {
	Export(title, content, format string) (*document.ExportResult, error)
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

// ServeHTTP обрабатывает запрос экспорта. Формат берётся из URL:
// /api/export/{format}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transfer.exportfile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	format := chi.URLParam(r, "format")
	result, err := h.service.Export(req.Title, req.Content, format)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Unsupported file type"))
			return
		}
		log.Error("failed to export document", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to export document"))
		return
	}

	log.Info("document exported",
		slog.String("format", format), slog.Int("size", len(result.Data)))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
