package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trailing_marker", "Here is the summary.\nUser:", "Here is the summary."},
		{"trailing_marker_with_spaces", "Here is the summary. User:   ", "Here is the summary."},
		{"trailing_marker_with_newlines", "Answer\n\nUser:\n\n\t", "Answer"},
		{"no_marker", "  plain answer \n", "plain answer"},
		{"embedded_marker_kept", "User: asked something\nAssistant: replied", "User: asked something\nAssistant: replied"},
		{"embedded_and_trailing", "User: hi\nAssistant: hello\nUser:", "User: hi\nAssistant: hello"},
		{"only_marker", "User:", ""},
		{"empty", "", ""},
		{"lowercase_not_stripped", "answer user:", "answer user:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanResponse(tt.input))
		})
	}
}
