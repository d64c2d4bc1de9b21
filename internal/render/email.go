package render

import (
	"fmt"
	"strings"

	"github.com/derailed/tview"
	"github.com/mattn/go-runewidth"
)

// Chat roles as stored in the session history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SenderName extracts the display name from a "Name <email@domain.com>" header
func SenderName(from string) string {
	from = strings.TrimSpace(from)
	if i := strings.Index(from, "<"); i > 0 && strings.Contains(from[i:], ">") {
		name := strings.Trim(strings.TrimSpace(from[:i]), `"`)
		if name != "" {
			return name
		}
	}
	return from
}

// FitWidth truncates and pads on the right to fit a fixed display width
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "...")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// FormatEmailLine renders one email row as "Sender | Subject" for the list pane
func FormatEmailLine(from, subject string, maxWidth int) string {
	if maxWidth < 40 {
		maxWidth = 40
	}
	sender := SenderName(from)
	if sender == "" {
		sender = "(No sender)"
	}
	if strings.TrimSpace(subject) == "" {
		subject = "(No subject)"
	}
	senderWidth := 22
	subjectWidth := maxWidth - senderWidth - 3
	return fmt.Sprintf("%s | %s", FitWidth(sender, senderWidth), FitWidth(subject, subjectWidth))
}

// FormatEmailBlock renders an email with its summary using tview color tags
func FormatEmailBlock(from, subject, content string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[yellow]From:[-] %s\n", escapeTags(from)))
	b.WriteString(fmt.Sprintf("[yellow]Subject:[-] %s\n", escapeTags(subject)))
	if strings.TrimSpace(content) == "" {
		b.WriteString("[gray](no summary available)[-]\n")
	} else {
		b.WriteString(escapeTags(content))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatChatTurn renders a chat message as a labelled bubble
func FormatChatTurn(role, content string) string {
	label := "[green::b]You[-:-:-]"
	if role == RoleAssistant {
		label = "[cyan::b]Assistant[-:-:-]"
	}
	return fmt.Sprintf("%s\n%s\n\n", label, escapeTags(strings.TrimSpace(content)))
}

// escapeTags keeps user and model text from being parsed as color tags
func escapeTags(s string) string {
	return tview.Escape(s)
}
