package tui

import (
	"strings"

	"github.com/derailed/tview"
)

const composePage = "compose"

// showCompose opens the compose form
func (a *App) showCompose() {
	to := tview.NewInputField().
		SetLabel("To: ").
		SetPlaceholder("recipient@example.com").
		SetFieldWidth(50)
	subject := tview.NewInputField().
		SetLabel("Subject: ").
		SetPlaceholder("Enter email subject").
		SetFieldWidth(50)
	body := tview.NewInputField().
		SetLabel("Body: ").
		SetPlaceholder("Enter your message here...").
		SetFieldWidth(50)

	form := tview.NewForm()
	form.AddFormItem(to)
	form.AddFormItem(subject)
	form.AddFormItem(body)
	form.AddButton("Send", func() {
		a.sendComposed(to.GetText(), subject.GetText(), body.GetText())
	})
	form.AddButton("Cancel", a.closeModal)
	form.SetBorder(true)
	form.SetTitle(" Compose ")

	a.openModal(composePage, form, 70, 11)
}

func (a *App) sendComposed(to, subject, body string) {
	to = strings.TrimSpace(to)
	if to == "" {
		a.showError("Recipient cannot be empty")
		return
	}
	if a.emailService == nil {
		a.showError("Gmail is not connected")
		return
	}

	a.errorHandler.ShowProgress(a.ctx, "Sending email...")
	go func() {
		_, err := a.emailService.SendEmail(a.ctx, to, subject, body)
		a.errorHandler.ClearProgress()
		if err != nil {
			a.errorHandler.ShowGmailError(a.ctx, "send", err)
			return
		}
		a.QueueUpdateDraw(func() {
			if top, ok := a.Pages.stack.Top(); ok && top == composePage {
				a.closeModal()
			}
		})
		a.errorHandler.ShowSuccess(a.ctx, "Email sent to "+to)
	}()
}
