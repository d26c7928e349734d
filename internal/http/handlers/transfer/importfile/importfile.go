// Package importfile реализует HTTP-обработчик импорта файла:
// из multipart-загрузки txt, docx или pdf извлекается простой текст.
package importfile

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/novawriterhq/novawriter/internal/http/response"
	"github.com/novawriterhq/novawriter/internal/lib/sl"
	"github.com/novawriterhq/novawriter/internal/services/document"
)

// maxUploadSize ограничивает размер загружаемого файла.
const maxUploadSize = 20 << 20 // 20 MiB

// Service описывает интерфейс бизнес-логики извлечения текста.
type Service interface {
	ExtractContent(filename string, data []byte) (string, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transfer.importfile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("No file uploaded"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("file field missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("No file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read uploaded file"))
		return
	}

	content, err := h.service.ExtractContent(header.Filename, data)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Unsupported file type"))
			return
		}
		log.Error("failed to extract file content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to extract file content"))
		return
	}

	log.Info("file imported", slog.String("filename", header.Filename))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"content": content,
	}))
}
