package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ajramos/timesaver/internal/services"
	"github.com/derailed/tview"
)

const timerPage = "timer"

// showTimer opens the countdown form
func (a *App) showTimer() {
	duration := tview.NewInputField().
		SetLabel("Duration: ").
		SetText(a.Config.Timer.Default).
		SetPlaceholder("25m, 90s or minutes").
		SetFieldWidth(12)

	form := tview.NewForm()
	form.AddFormItem(duration)
	form.AddButton("Start", func() {
		a.startTimer(duration.GetText())
	})
	form.AddButton("Stop", a.stopTimer)
	form.AddButton("Close", a.closeModal)
	form.SetBorder(true)
	form.SetTitle(" Timer ")

	a.openModal(timerPage, form, 50, 7)
}

// parseTimerDuration accepts a Go duration ("1h30m") or a bare number of minutes
func parseTimerDuration(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("enter a duration")
	}
	if n, err := strconv.Atoi(text); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(text)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", text)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}

func (a *App) startTimer(text string) {
	if a.timerService == nil {
		return
	}
	d, err := parseTimerDuration(text)
	if err != nil {
		a.showError(err.Error())
		return
	}

	err = a.timerService.Start(a.ctx, d, a.onTimerTick, a.onTimerDone)
	switch {
	case errors.Is(err, services.ErrTimerRunning):
		a.showError("A timer is already running")
	case err != nil:
		a.showError(err.Error())
	default:
		a.showInfo("Timer started for " + services.FormatRemaining(d))
		a.closeModal()
	}
}

// stopTimer waits for the countdown goroutine, so it runs off the UI goroutine
func (a *App) stopTimer() {
	if a.timerService == nil || !a.timerService.Running() {
		a.showInfo("No timer running")
		return
	}
	go func() {
		a.timerService.Stop()
		a.setTimerLeft("")
		a.errorHandler.ShowInfo(a.ctx, "Timer stopped")
	}()
}

func (a *App) onTimerTick(remaining time.Duration) {
	if remaining <= 0 {
		a.setTimerLeft("")
		return
	}
	a.setTimerLeft(services.FormatRemaining(remaining))
}

func (a *App) onTimerDone() {
	a.QueueUpdateDraw(func() {
		if a.Config.Timer.Bell {
			a.bell()
		}
	})
	a.errorHandler.ShowSuccess(a.ctx, "Time's up!")
}

func (a *App) setTimerLeft(left string) {
	a.mu.Lock()
	a.timerLeft = left
	a.mu.Unlock()
	a.QueueUpdateDraw(a.refreshStatus)
}
