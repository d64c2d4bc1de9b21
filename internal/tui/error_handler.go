package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

const statusClearDelay = 5 * time.Second

// ErrorHandler provides consistent error handling and user feedback
type ErrorHandler struct {
	mu         sync.RWMutex
	app        *tview.Application
	appRef     *App // for the baseline status
	statusView *tview.TextView
	logger     *slog.Logger

	// Status message state
	currentStatus    string
	currentLevel     LogLevel
	persistentStatus string
	statusTimer      *time.Timer
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(app *tview.Application, appRef *App, statusView *tview.TextView, logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		app:        app,
		appRef:     appRef,
		statusView: statusView,
		logger:     logger,
	}
}

// HandleError logs err and shows userMsg in the status bar
func (eh *ErrorHandler) HandleError(ctx context.Context, err error, userMsg string) {
	if err == nil {
		return
	}

	if eh.logger != nil {
		eh.logger.ErrorContext(ctx, userMsg, "error", err)
	}

	if userMsg == "" {
		userMsg = "An error occurred"
	}
	eh.show(userMsg+": "+err.Error(), LogLevelError)
}

// ShowMessage displays a message to the user
func (eh *ErrorHandler) ShowMessage(ctx context.Context, msg string, level LogLevel) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	if eh.logger != nil {
		eh.logger.Log(ctx, eh.levelToSlog(level), msg)
	}
	eh.show(msg, level)
}

func (eh *ErrorHandler) show(msg string, level LogLevel) {
	eh.updateStatusMessage(eh.formatMessage(msg, level), level)
}

// ShowPersistentMessage shows a status message that stays until cleared
func (eh *ErrorHandler) ShowPersistentMessage(ctx context.Context, msg string, level LogLevel) {
	formattedMsg := eh.formatMessage(msg, level)

	eh.mu.Lock()
	eh.persistentStatus = formattedMsg
	eh.mu.Unlock()

	eh.redraw()
}

// ClearPersistentMessage clears the persistent status message
func (eh *ErrorHandler) ClearPersistentMessage() {
	eh.mu.Lock()
	eh.persistentStatus = ""
	eh.mu.Unlock()

	eh.redraw()
}

// redraw repaints the status line without waiting on the event loop, which may be the caller
func (eh *ErrorHandler) redraw() {
	if eh.app == nil {
		eh.Refresh()
		return
	}
	go eh.app.QueueUpdateDraw(eh.Refresh)
}

func (eh *ErrorHandler) formatMessage(msg string, level LogLevel) string {
	var icon string
	switch level {
	case LogLevelInfo:
		icon = "ℹ️"
	case LogLevelWarning:
		icon = "⚠️"
	case LogLevelError:
		icon = "❌"
	case LogLevelSuccess:
		icon = "✅"
	default:
		icon = "•"
	}
	return fmt.Sprintf("%s %s", icon, tview.Escape(msg))
}

func (eh *ErrorHandler) levelToSlog(level LogLevel) slog.Level {
	switch level {
	case LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (eh *ErrorHandler) levelToColor(level LogLevel) tcell.Color {
	switch level {
	case LogLevelWarning:
		return tcell.ColorYellow
	case LogLevelError:
		return tcell.ColorRed
	case LogLevelSuccess:
		return tcell.ColorGreen
	default:
		return tcell.ColorWhite
	}
}

// updateStatusMessage sets the current message and schedules its auto-clear
func (eh *ErrorHandler) updateStatusMessage(msg string, level LogLevel) {
	eh.mu.Lock()
	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}
	eh.currentStatus = msg
	eh.currentLevel = level
	eh.statusTimer = time.AfterFunc(statusClearDelay, func() {
		eh.clearCurrentStatusSafely(msg)
	})
	eh.mu.Unlock()

	eh.redraw()
}

// clearCurrentStatusSafely clears the status only if no newer message replaced it
func (eh *ErrorHandler) clearCurrentStatusSafely(expectedMsg string) {
	eh.mu.Lock()
	if eh.currentStatus != expectedMsg {
		eh.mu.Unlock()
		return
	}
	eh.currentStatus = ""
	eh.mu.Unlock()

	eh.redraw()
}

// Refresh redraws the status line, picking up baseline changes
func (eh *ErrorHandler) Refresh() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.refreshStatusDisplay()
}

// refreshStatusDisplay must be called with mu held
func (eh *ErrorHandler) refreshStatusDisplay() {
	if eh.statusView == nil {
		return
	}

	displayText, color := eh.getBaselineStatus(), tcell.ColorWhite
	switch {
	case eh.currentStatus != "":
		displayText, color = eh.currentStatus, eh.levelToColor(eh.currentLevel)
	case eh.persistentStatus != "":
		displayText = eh.persistentStatus
	}
	eh.statusView.SetTextColor(color)
	eh.statusView.SetText(displayText)
}

func (eh *ErrorHandler) getBaselineStatus() string {
	if eh.appRef != nil {
		return eh.appRef.statusBaseline()
	}
	return defaultBaseline
}

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelInfo)
}

// ShowWarning shows a warning message
func (eh *ErrorHandler) ShowWarning(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelWarning)
}

// ShowError shows an error message
func (eh *ErrorHandler) ShowError(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelError)
}

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelSuccess)
}

// ShowLLMError shows a model failure with the operation it happened in
func (eh *ErrorHandler) ShowLLMError(ctx context.Context, operation string, err error) {
	eh.HandleError(ctx, err, fmt.Sprintf("AI %s failed", operation))
}

// ShowGmailError shows a Gmail API failure with the operation it happened in
func (eh *ErrorHandler) ShowGmailError(ctx context.Context, operation string, err error) {
	eh.HandleError(ctx, err, fmt.Sprintf("Gmail %s failed", operation))
}

// ShowProgress shows a progress message
func (eh *ErrorHandler) ShowProgress(ctx context.Context, msg string) {
	eh.ShowPersistentMessage(ctx, msg, LogLevelInfo)
}

// ClearProgress clears any progress message
func (eh *ErrorHandler) ClearProgress() {
	eh.ClearPersistentMessage()
}
