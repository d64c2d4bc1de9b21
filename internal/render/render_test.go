package render

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain_text", "Hello there", "Hello there"},
		{"simple_tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"drops_style", "<html><head><style>p { color: red; }</style></head><body><p>Body</p></body></html>", "Body"},
		{"drops_script", "<div>Visible<script>alert('x')</script></div>", "Visible"},
		{"decodes_entities", "Fish &amp; Chips", "Fish & Chips"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := StripHTML(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, strings.TrimSpace(out))
		})
	}
}

func TestStripHTML_BlockElementsBreakLines(t *testing.T) {
	out, err := StripHTML("<p>First</p><p>Second<br>Third</p><ul><li>One</li><li>Two</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "First\n\nSecond\nThird\n\nOne\n\nTwo", CollapseBlankLines(out))
}

func TestCollapseBlankLines(t *testing.T) {
	in := "Hello   \n\n\n\nWorld\t\r\n\r\n\r\nBye\n\n"
	assert.Equal(t, "Hello\n\nWorld\n\nBye", CollapseBlankLines(in))
	assert.Equal(t, "", CollapseBlankLines("\n\n  \n"))
}

func TestSenderName(t *testing.T) {
	assert.Equal(t, "Jane Doe", SenderName("Jane Doe <jane@example.com>"))
	assert.Equal(t, "Jane Doe", SenderName(`"Jane Doe" <jane@example.com>`))
	assert.Equal(t, "jane@example.com", SenderName("jane@example.com"))
	assert.Equal(t, "<jane@example.com>", SenderName("<jane@example.com>"))
	assert.Equal(t, "", SenderName(""))
}

func TestFitWidth(t *testing.T) {
	assert.Equal(t, "abc  ", FitWidth("abc", 5))
	assert.Equal(t, "ab...", FitWidth("abcdefgh", 5))
	assert.Equal(t, "", FitWidth("abc", 0))
	assert.Equal(t, 6, runewidth.StringWidth(FitWidth("日本語テキスト", 6)))
}

func TestFormatEmailLine(t *testing.T) {
	line := FormatEmailLine("Jane Doe <jane@example.com>", "Quarterly report", 60)
	assert.True(t, strings.HasPrefix(line, "Jane Doe"))
	assert.Contains(t, line, " | Quarterly report")
	assert.Equal(t, 60, runewidth.StringWidth(line))

	empty := FormatEmailLine("", "", 10)
	assert.Contains(t, empty, "(No sender)")
	assert.Contains(t, empty, "(No subject)")
}

func TestFormatChatTurn(t *testing.T) {
	user := FormatChatTurn(RoleUser, " what is due? ")
	assert.Contains(t, user, "You")
	assert.Contains(t, user, "what is due?")

	assistant := FormatChatTurn(RoleAssistant, "The [red] report")
	assert.Contains(t, assistant, "Assistant")
	assert.NotContains(t, assistant, "The [red] report")
}

func TestFormatEmailBlock(t *testing.T) {
	block := FormatEmailBlock("a@b.c", "Hi", "")
	assert.Contains(t, block, "no summary available")

	block = FormatEmailBlock("a@b.c", "Hi", "Summary text")
	assert.Contains(t, block, "Summary text")
}
