package tui

import (
	"fmt"
	"strings"

	"github.com/derailed/tview"
)

const defaultBaseline = "TimeSaver | ^R Retrieve | ^N Compose | ^T Timer | ^L Clear chat | ^Q Quit"

// statusBaseline is the status text shown when no message is active
func (a *App) statusBaseline() string {
	a.mu.RLock()
	email, left := a.accountEmail, a.timerLeft
	a.mu.RUnlock()

	parts := []string{defaultBaseline}
	if email != "" {
		parts = append(parts, tview.Escape(email))
	}
	if left != "" {
		parts = append(parts, fmt.Sprintf("⏱ %s", left))
	}
	return strings.Join(parts, " | ")
}

// refreshStatus redraws the status bar; call it on the UI goroutine
func (a *App) refreshStatus() {
	if a.errorHandler != nil {
		a.errorHandler.Refresh()
		return
	}
	if status := a.statusView(); status != nil {
		status.SetText(a.statusBaseline())
	}
}

func (a *App) statusView() *tview.TextView {
	status, _ := a.views["status"].(*tview.TextView)
	return status
}

// showError shows an error message via status helpers
func (a *App) showError(msg string) {
	a.errorHandler.ShowError(a.ctx, msg)
}

// showInfo shows an info message via status helpers
func (a *App) showInfo(msg string) {
	a.errorHandler.ShowInfo(a.ctx, msg)
}
