package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const (
	questionPlaceholder = "What would you like to ask about the emails?"
	sidebarWidth        = 30
)

// initComponents builds the main views and registers them in a.views
func (a *App) initComponents() {
	// Sidebar: lookback window and retrieval
	hours := tview.NewInputField().
		SetLabel("Hours: ").
		SetText(strconv.Itoa(a.Config.Mail.DefaultHours)).
		SetFieldWidth(4).
		SetAcceptanceFunc(tview.InputFieldInteger)
	a.views["hours"] = hours

	sidebar := tview.NewForm()
	sidebar.AddFormItem(hours)
	sidebar.AddButton("Retrieve Emails", a.retrieveEmails)
	sidebar.SetBorder(true)
	sidebar.SetTitle(" TimeSaver ")
	a.views["sidebar"] = sidebar

	emails := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true).
		SetWordWrap(true)
	emails.SetBorder(true)
	emails.SetTitle(" Emails ")
	emails.SetText(emailsText(nil))
	a.views["emails"] = emails

	chat := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true).
		SetWordWrap(true)
	chat.SetBorder(true)
	chat.SetTitle(" Chat ")
	a.views["chat"] = chat

	input := tview.NewInputField().
		SetLabel("> ").
		SetPlaceholder(questionPlaceholder)
	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			a.submitQuestion(input.GetText())
		case tcell.KeyTab:
			a.SetFocus(sidebar)
		}
	})
	a.views["input"] = input

	status := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	status.SetText(defaultBaseline)
	a.views["status"] = status

	content := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(emails, 0, 3, false).
		AddItem(chat, 0, 2, false).
		AddItem(input, 1, 0, true)

	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(sidebar, sidebarWidth, 0, false).
		AddItem(content, 0, 1, true)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(status, 1, 0, false)
	a.views["main"] = main

	a.Pages.AddPage("main", main, true, true)
}

// hoursInput reads and validates the sidebar hours field
func (a *App) hoursInput() (int, error) {
	field, ok := a.views["hours"].(*tview.InputField)
	if !ok {
		return a.Config.Mail.DefaultHours, nil
	}
	return parseHours(field.GetText(), a.Config.Mail.MaxHours)
}

func parseHours(text string, maxHours int) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("enter the number of hours to look back")
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 || n > maxHours {
		return 0, fmt.Errorf("hours must be a whole number between 0 and %d", maxHours)
	}
	return n, nil
}

// modal centers p in a box of the given size over the main page
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// openModal shows p on top of the main page and focuses it
func (a *App) openModal(name string, p tview.Primitive, width, height int) {
	if a.Pages.stack.Contains(name) {
		a.SetFocus(a.views[name])
		return
	}
	a.views[name] = p
	a.Pages.stack.Push(name)
	a.Pages.AddPage(name, modal(p, width, height), true, true)
	a.SetFocus(p)
}

// closeModal removes the top modal and focuses the next one, or the question input
func (a *App) closeModal() {
	name, ok := a.Pages.stack.Pop()
	if !ok {
		return
	}
	a.Pages.RemovePage(name)
	delete(a.views, name)
	if top, ok := a.Pages.stack.Top(); ok {
		if p, ok := a.views[top]; ok {
			a.SetFocus(p)
			return
		}
	}
	a.focusInput()
}

func (a *App) focusInput() {
	if input, ok := a.views["input"]; ok {
		a.SetFocus(input)
	}
}
