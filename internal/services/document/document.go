// Package document реализует бизнес-логику отдельных документов,
// включая импорт из файлов и экспорт в TXT, DOCX и PDF.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/novawriterhq/novawriter/internal/convert"
	"github.com/novawriterhq/novawriter/internal/models"
)

// ErrUnsupportedFormat возвращается при импорте или экспорте
// в неизвестном формате.
var ErrUnsupportedFormat = errors.New("unsupported format")

// DefaultTitle — заголовок документа, созданного без названия.
const DefaultTitle = "Untitled"

// Repository — хранилище документов.
type Repository interface {
	CreateDocument(ctx context.Context, userID, title, content string) (*models.Document, error)
	ListDocuments(ctx context.Context, userID string) ([]*models.Document, error)
	GetDocument(ctx context.Context, id, userID string) (*models.Document, error)
	UpdateDocument(ctx context.Context, id, userID string, upd models.DocumentUpdate) (*models.Document, error)
	DeleteDocument(ctx context.Context, id, userID string) error
}

// DocumentService реализует операции над документами пользователя.
type DocumentService struct {
	repo Repository
}

// New создаёт DocumentService.
func New(repo Repository) *DocumentService {
	return &DocumentService{repo: repo}
}

// Create создаёт документ. Пустой заголовок заменяется на DefaultTitle.
func (s *DocumentService) Create(ctx context.Context, userID string, req models.DummyDocument) (*models.Document, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultTitle
	}
	return s.repo.CreateDocument(ctx, userID, title, req.Content)
}

// List возвращает документы пользователя.
func (s *DocumentService) List(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.repo.ListDocuments(ctx, userID)
}

// Get возвращает документ пользователя.
func (s *DocumentService) Get(ctx context.Context, id, userID string) (*models.Document, error) {
	return s.repo.GetDocument(ctx, id, userID)
}

// Update применяет частичное обновление документа.
func (s *DocumentService) Update(ctx context.Context, id, userID string, upd models.DocumentUpdate) (*models.Document, error) {
	return s.repo.UpdateDocument(ctx, id, userID, upd)
}

// Delete удаляет документ пользователя.
func (s *DocumentService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteDocument(ctx, id, userID)
}

// ExtractContent извлекает текст из загруженного файла txt, docx или pdf.
// Текст возвращается как есть: вставить его в документ решает клиент.
func (s *DocumentService) ExtractContent(filename string, data []byte) (string, error) {
	const op = "document.ExtractContent"

	text, err := convert.ExtractText(filename, data)
	if err != nil {
		if errors.Is(err, convert.ErrUnsupportedFormat) {
			return "", ErrUnsupportedFormat
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return text, nil
}

// ExportResult — файл, готовый к отдаче клиенту.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export собирает файл формата txt, docx или pdf из заголовка
// и HTML-содержимого. Разметка сводится к простым абзацам.
func (s *DocumentService) Export(title, content, format string) (*ExportResult, error) {
	const op = "document.Export"

	base := safeFilename(title)
	switch strings.ToLower(format) {
	case "txt":
		return &ExportResult{
			Filename:    base + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        convert.ExportTXT(content),
		}, nil
	case "docx":
		data, err := convert.ExportDOCX(title, content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &ExportResult{
			Filename:    base + ".docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        data,
		}, nil
	case "pdf":
		data, err := convert.ExportPDF(title, content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &ExportResult{
			Filename:    base + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// safeFilename превращает заголовок документа в безопасное имя файла.
func safeFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "document"
	}
	return name
}
