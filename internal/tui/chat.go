package tui

import (
	"errors"
	"strings"

	"github.com/ajramos/timesaver/internal/render"
	"github.com/ajramos/timesaver/internal/services"
	"github.com/derailed/tview"
)

// submitQuestion asks the chat service about the loaded emails
func (a *App) submitQuestion(question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}
	if a.chatService == nil {
		a.showError("No language model configured")
		return
	}

	a.mu.Lock()
	if a.asking {
		a.mu.Unlock()
		a.showInfo("Still waiting for the previous answer")
		return
	}
	a.asking = true
	a.mu.Unlock()

	if input, ok := a.views["input"].(*tview.InputField); ok {
		input.SetText("")
	}
	a.renderChat(a.session.History(), question)

	go func() {
		defer func() {
			a.mu.Lock()
			a.asking = false
			a.mu.Unlock()
		}()

		_, err := a.chatService.Ask(a.ctx, a.session, question)
		a.QueueUpdateDraw(func() {
			a.renderChat(a.session.History(), "")
		})
		switch {
		case err == nil:
		case errors.Is(err, services.ErrNoEmails):
			a.errorHandler.ShowWarning(a.ctx, "Please retrieve emails first")
		default:
			a.errorHandler.ShowLLMError(a.ctx, "answer", err)
		}
	}()
}

// clearChat drops the conversation and keeps the emails
func (a *App) clearChat() {
	a.session.ClearHistory()
	a.renderChat(nil, "")
	a.showInfo("Chat cleared")
}

func (a *App) renderChat(history []services.ChatMessage, pending string) {
	view, ok := a.views["chat"].(*tview.TextView)
	if !ok {
		return
	}
	view.SetText(chatText(history, pending))
	view.ScrollToEnd()
}

// chatText renders the conversation; pending is a question still waiting for its answer
func chatText(history []services.ChatMessage, pending string) string {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(render.FormatChatTurn(m.Role, m.Content))
	}
	if pending != "" {
		b.WriteString(render.FormatChatTurn(render.RoleUser, pending))
		b.WriteString("[gray]Thinking...[-]\n")
	}
	return b.String()
}
