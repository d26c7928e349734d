// Package htmltext преобразует разметку редактора в плоский текст.
//
// Редактор хранит содержимое документов как HTML-строку; при экспорте
// в DOCX/PDF и при подсчёте слов нужен только текст с сохранёнными
// абзацами и маркерами списков.
package htmltext

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

var rules = []rule{
	{regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`), "\n\n$1\n\n"},
	{regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`), "\n\n$1\n\n"},
	{regexp.MustCompile(`(?is)<h3[^>]*>(.*?)</h3>`), "\n\n$1\n"},
	{regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`), "• $1\n"},
	{regexp.MustCompile(`(?i)</ul>`), "\n"},
	{regexp.MustCompile(`(?i)<ul[^>]*>`), ""},
	{regexp.MustCompile(`(?i)</ol>`), "\n"},
	{regexp.MustCompile(`(?i)<ol[^>]*>`), ""},
	{regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`), "$1\n\n"},
	{regexp.MustCompile(`(?i)<br\s*/?>`), "\n"},
	{regexp.MustCompile(`(?is)<strong[^>]*>(.*?)</strong>`), "$1"},
	{regexp.MustCompile(`(?is)<b[^>]*>(.*?)</b>`), "$1"},
	{regexp.MustCompile(`(?is)<em[^>]*>(.*?)</em>`), "$1"},
	{regexp.MustCompile(`(?is)<i[^>]*>(.*?)</i>`), "$1"},
	{regexp.MustCompile(`(?is)<u[^>]*>(.*?)</u>`), "$1"},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

var blankRuns = regexp.MustCompile(`\n\n\n+`)

// Strip убирает разметку, раскрывает HTML-сущности и схлопывает
// последовательности пустых строк до одного пустого абзаца.
func Strip(html string) string {
	s := html
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
	).Replace(s)
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Paragraphs возвращает непустые строки плоского текста.
func Paragraphs(html string) []string {
	var out []string
	for _, line := range strings.Split(Strip(html), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// WordCount считает слова в тексте образца письма.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
