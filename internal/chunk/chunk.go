// Package chunk splits long text into bounded pieces that end on natural breakpoints.
package chunk

import "errors"

// DefaultMaxLength is the chunk budget used for email bodies.
const DefaultMaxLength = 1000

// ErrInvalidMaxLength is returned when the requested chunk length is not positive
var ErrInvalidMaxLength = errors.New("max length must be positive")

// Split cuts text into consecutive chunks of at most maxLength characters.
//
// Inside each window of maxLength characters the cut is placed after the last
// ". " (keeping the period), else after the last newline, else at the window end.
// Concatenating the returned chunks in order yields text exactly. Lengths are
// counted in runes so multi-byte characters are never split.
func Split(text string, maxLength int) ([]string, error) {
	if maxLength <= 0 {
		return nil, ErrInvalidMaxLength
	}

	rest := []rune(text)
	var chunks []string
	for len(rest) > maxLength {
		cut := boundary(rest[:maxLength])
		chunks = append(chunks, string(rest[:cut]))
		rest = rest[cut:]
	}
	if len(rest) > 0 {
		chunks = append(chunks, string(rest))
	}
	return chunks, nil
}

// boundary returns the length of the chunk to emit from window
func boundary(window []rune) int {
	for i := len(window) - 2; i >= 0; i-- {
		if window[i] == '.' && window[i+1] == ' ' {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	return len(window)
}
