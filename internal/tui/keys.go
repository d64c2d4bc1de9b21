package tui

import (
	"github.com/derailed/tcell/v2"
)

// bindKeys installs the global shortcuts
func (a *App) bindKeys() {
	a.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.handleKey(event.Key()) {
			return nil
		}
		return event
	})
}

// handleKey runs the action bound to key and reports whether it consumed it
func (a *App) handleKey(key tcell.Key) bool {
	switch key {
	case tcell.KeyCtrlQ:
		a.logger.Info("quit requested")
		a.quit()
		return true
	case tcell.KeyCtrlR:
		a.retrieveEmails()
		return true
	case tcell.KeyCtrlN:
		a.showCompose()
		return true
	case tcell.KeyCtrlT:
		a.showTimer()
		return true
	case tcell.KeyCtrlL:
		a.clearChat()
		return true
	case tcell.KeyEscape:
		if a.Pages.stack.Len() > 0 {
			a.closeModal()
			return true
		}
		if a.GetFocus() != a.views["input"] {
			a.focusInput()
			return true
		}
	}
	return false
}
