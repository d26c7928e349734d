package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraphs",
			in:   "<p>First.</p><p>Second.</p>",
			want: "First.\n\nSecond.",
		},
		{
			name: "heading and text",
			in:   "<h1>Title</h1><p>Body</p>",
			want: "Title\n\nBody",
		},
		{
			name: "list items get bullets",
			in:   "<ul><li>one</li><li>two</li></ul>",
			want: "• one\n• two",
		},
		{
			name: "inline formatting removed",
			in:   "<p><strong>bold</strong> and <em>italic</em> and <u>under</u></p>",
			want: "bold and italic and under",
		},
		{
			name: "entities unescaped",
			in:   "<p>fish &amp; chips &lt;cheap&gt; &quot;good&quot;&nbsp;</p>",
			want: `fish & chips <cheap> "good"`,
		},
		{
			name: "blank runs collapsed",
			in:   "<h1>A</h1><h2>B</h2><p></p><p>C</p>",
			want: "A\n\nB\n\nC",
		},
		{
			name: "line breaks",
			in:   "<p>a<br>b<br/>c</p>",
			want: "a\nb\nc",
		},
		{
			name: "unknown tags dropped",
			in:   `<div class="x"><span>text</span></div>`,
			want: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("<p>one</p><p></p><p>two</p>")
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 5, WordCount("the quick brown fox jumps"))
	assert.Equal(t, 2, WordCount("  spaced \n out  "))
}
