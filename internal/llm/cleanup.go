package llm

import (
	"regexp"
	"strings"
)

// Some chat models echo the next speaker label at the end of a reply.
var trailingUserMarker = regexp.MustCompile(`User:\s*$`)

// CleanResponse removes a dangling "User:" marker at the very end of a model
// response and trims surrounding whitespace. Markers elsewhere are kept.
func CleanResponse(text string) string {
	return strings.TrimSpace(trailingUserMarker.ReplaceAllString(text, ""))
}
