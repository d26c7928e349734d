package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_TXT(t *testing.T) {
	text, err := ExtractText("draft.txt", []byte("Первая строка\nВторая строка"))
	require.NoError(t, err)
	assert.Equal(t, "Первая строка\nВторая строка", text)
}

func TestExtractText_UnsupportedFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "odt не поддерживается", filename: "draft.odt"},
		{name: "без расширения", filename: "draft"},
		{name: "исполняемый файл", filename: "draft.exe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractText(tt.filename, []byte("data"))
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func TestExtractText_ExtensionCaseInsensitive(t *testing.T) {
	text, err := ExtractText("DRAFT.TXT", []byte("содержимое"))
	require.NoError(t, err)
	assert.Equal(t, "содержимое", text)
}

func TestTextToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "каждая строка становится абзацем",
			in:   "Первая\nВторая",
			want: "<p>Первая</p><p>Вторая</p>",
		},
		{
			name: "пустые строки пропускаются",
			in:   "Первая\n\n\nВторая\n",
			want: "<p>Первая</p><p>Вторая</p>",
		},
		{
			name: "пробельные строки пропускаются",
			in:   "Первая\n   \nВторая",
			want: "<p>Первая</p><p>Вторая</p>",
		},
		{
			name: "пустой текст",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextToHTML(tt.in))
		})
	}
}

func TestExportTXT(t *testing.T) {
	content := "<h1>Заголовок</h1><p>Первый абзац</p><p>Второй <strong>абзац</strong></p>"
	got := string(ExportTXT(content))
	assert.Equal(t, "Заголовок\n\nПервый абзац\n\nВторой абзац", got)
}

func TestExportDOCX_ProducesArchive(t *testing.T) {
	data, err := ExportDOCX("Рассказ", "<p>Жили-были</p>")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// DOCX — это zip-архив, начинается с сигнатуры PK
	assert.Equal(t, byte('P'), data[0])
	assert.Equal(t, byte('K'), data[1])
}

func TestExportPDF_ProducesDocument(t *testing.T) {
	data, err := ExportPDF("Рассказ", "<p>Once upon a time</p>")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
