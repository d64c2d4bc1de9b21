package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/timesaver/internal/render"
	"github.com/ajramos/timesaver/internal/services"
	"github.com/derailed/tview"
)

const emailSeparator = "[gray]────────────────────────────────[-]\n"

// retrieveEmails fetches and summarizes the emails of the selected window in the background
func (a *App) retrieveEmails() {
	hours, err := a.hoursInput()
	if err != nil {
		a.showError(err.Error())
		return
	}
	if a.emailService == nil {
		a.showError("Gmail is not connected")
		return
	}

	a.mu.Lock()
	if a.retrieving {
		a.mu.Unlock()
		a.showInfo("Retrieval already in progress")
		return
	}
	a.retrieving = true
	a.summaryFailures = 0
	a.mu.Unlock()

	a.errorHandler.ShowProgress(a.ctx, fmt.Sprintf("Retrieving emails from the last %d hour(s)...", hours))
	a.logger.Info("retrieving emails", "hours", hours)

	go func() {
		defer func() {
			a.mu.Lock()
			a.retrieving = false
			a.mu.Unlock()
		}()

		emails, err := a.emailService.RetrieveEmails(a.ctx, hours)
		a.errorHandler.ClearProgress()
		if err != nil {
			a.errorHandler.ShowGmailError(a.ctx, "retrieval", err)
			return
		}

		a.session.SetEmails(emails)
		a.QueueUpdateDraw(func() {
			a.renderEmails(emails)
		})

		a.mu.RLock()
		failed := a.summaryFailures
		a.mu.RUnlock()

		switch {
		case len(emails) == 0:
			a.errorHandler.ShowInfo(a.ctx, fmt.Sprintf("No emails in the last %d hour(s)", hours))
		case failed > 0:
			a.errorHandler.ShowWarning(a.ctx, fmt.Sprintf("Retrieved %d email(s), %d summaries failed", len(emails), failed))
		default:
			a.errorHandler.ShowSuccess(a.ctx, fmt.Sprintf("Retrieved %d email(s)", len(emails)))
		}
	}()
}

func (a *App) renderEmails(emails []services.Email) {
	view, ok := a.views["emails"].(*tview.TextView)
	if !ok {
		return
	}
	view.SetTitle(fmt.Sprintf(" Emails (%d) ", len(emails)))
	view.SetText(emailsText(emails))
	view.ScrollToBeginning()
}

// emailsText renders the email pane contents
func emailsText(emails []services.Email) string {
	if len(emails) == 0 {
		return "[gray]No emails loaded. Choose the hours to look back and press Retrieve Emails (Ctrl+R).[-]"
	}
	var b strings.Builder
	for i, e := range emails {
		if i > 0 {
			b.WriteString(emailSeparator)
		}
		b.WriteString(render.FormatEmailBlock(e.Sender, e.Subject, e.Content))
	}
	return b.String()
}
