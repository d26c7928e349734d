// Package convert выполняет импорт и экспорт документов в форматах
// TXT, DOCX и PDF. Внутреннее представление содержимого — HTML,
// поэтому экспорт начинается со снятия разметки, а импорт заканчивается
// обёртыванием абзацев в теги.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"

	"github.com/novawriterhq/novawriter/internal/lib/htmltext"
)

// ErrUnsupportedFormat возвращается для файлов неизвестного формата.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractText извлекает плоский текст из загруженного файла.
// Формат определяется по расширению имени файла.
func ExtractText(filename string, data []byte) (string, error) {
	const op = "convert.ExtractText"

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return string(data), nil
	case ".docx":
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		return text, nil
	case ".pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%s: %w", op, ErrUnsupportedFormat)
	}
}

// TextToHTML оборачивает непустые абзацы текста в теги <p>.
func TextToHTML(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(line)
		b.WriteString("</p>")
	}
	return b.String()
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		if paragraph, ok := item.(*docx.Paragraph); ok {
			text := strings.TrimSpace(paragraph.String())
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// ExportTXT возвращает содержимое документа как плоский текст.
func ExportTXT(content string) []byte {
	return []byte(htmltext.Strip(content))
}

// ExportDOCX собирает DOCX-файл из заголовка и содержимого документа.
func ExportDOCX(title, content string) ([]byte, error) {
	const op = "convert.ExportDOCX"

	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText(title).Size("32").Bold()
	for _, paragraph := range htmltext.Paragraphs(content) {
		w.AddParagraph().AddText(paragraph)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// ExportPDF собирает PDF-файл из заголовка и содержимого документа.
func ExportPDF(title, content string) ([]byte, error) {
	const op = "convert.ExportPDF"

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, tr(title), "", "L", false)
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	for _, paragraph := range htmltext.Paragraphs(content) {
		doc.MultiCell(0, 6, tr(paragraph), "", "L", false)
		doc.Ln(2)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
