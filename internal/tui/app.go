package tui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ajramos/timesaver/internal/config"
	"github.com/ajramos/timesaver/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// AccountLookup resolves the address of the signed-in account
type AccountLookup interface {
	ActiveAccountEmail(ctx context.Context) (string, error)
}

// Deps are the services the UI drives
type Deps struct {
	Emails  services.EmailService
	Chat    services.ChatService
	AI      services.AIService
	Timer   services.TimerService
	Account AccountLookup
	Logger  *slog.Logger
}

// App encapsulates the terminal UI and the services behind it
type App struct {
	*tview.Application
	Pages  *Pages
	Config *config.Config

	emailService services.EmailService
	chatService  services.ChatService
	aiService    services.AIService
	timerService services.TimerService
	account      AccountLookup
	session      *services.Session

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	views  map[string]tview.Primitive
	logger *slog.Logger

	errorHandler *ErrorHandler

	// State management
	screen       tcell.Screen
	retrieving   bool
	asking       bool
	accountEmail string
	timerLeft    string

	// summary failures reported during the current retrieval
	summaryFailures int
}

// Pages manages the application pages and the modal stack on top of the main layout
type Pages struct {
	*tview.Pages
	stack *Stack
}

// Stack manages navigation history
type Stack struct {
	items []string
	mu    sync.RWMutex
}

// NewPages creates a new Pages instance
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
		stack: &Stack{items: make([]string, 0)},
	}
}

// Push adds a page name on top of the stack
func (s *Stack) Push(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, name)
}

// Pop removes and returns the top page name
func (s *Stack) Pop() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", false
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, true
}

// Top returns the top page name without removing it
func (s *Stack) Top() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return "", false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of stacked pages
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Contains reports whether name is on the stack
func (s *Stack) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it == name {
			return true
		}
	}
	return false
}

// NewApp creates a new TUI application
func NewApp(cfg *config.Config, deps Deps) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Application:  tview.NewApplication(),
		Pages:        NewPages(),
		Config:       cfg,
		emailService: deps.Emails,
		chatService:  deps.Chat,
		aiService:    deps.AI,
		timerService: deps.Timer,
		account:      deps.Account,
		session:      services.NewSession(),
		ctx:          ctx,
		cancel:       cancel,
		views:        make(map[string]tview.Primitive),
		logger:       logger,
	}

	app.initComponents()
	app.errorHandler = NewErrorHandler(app.Application, app, app.statusView(), logger)

	if app.aiService != nil {
		app.aiService.SetErrorReporter(func(err error) {
			app.mu.Lock()
			app.summaryFailures++
			app.mu.Unlock()
			app.errorHandler.ShowLLMError(app.ctx, "summary", err)
		})
	}

	// Keep the screen so the timer can ring the bell
	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		app.mu.Lock()
		app.screen = screen
		app.mu.Unlock()
		return false
	})

	app.bindKeys()
	return app
}

// Session exposes the state of the current run
func (a *App) Session() *services.Session {
	return a.session
}

// GetErrorHandler returns the error handler
func (a *App) GetErrorHandler() *ErrorHandler {
	return a.errorHandler
}

// Run starts the UI and blocks until it exits
func (a *App) Run() error {
	a.SetRoot(a.Pages, true)
	a.refreshStatus()
	a.logger.Info("ui started")

	if a.account != nil {
		go func() {
			email, err := a.account.ActiveAccountEmail(a.ctx)
			if err != nil {
				a.logger.Warn("could not resolve account email", "error", err)
				return
			}
			a.mu.Lock()
			a.accountEmail = email
			a.mu.Unlock()
			a.QueueUpdateDraw(a.refreshStatus)
		}()
	}

	defer a.shutdown()
	return a.Application.Run()
}

// quit stops the timer goroutine and the application
func (a *App) quit() {
	a.cancel()
	a.Stop()
}

func (a *App) shutdown() {
	a.cancel()
	a.logger.Info("ui stopped")
}

// bell rings the terminal bell if the screen is known
func (a *App) bell() {
	a.mu.RLock()
	screen := a.screen
	a.mu.RUnlock()
	if screen != nil {
		_ = screen.Beep()
	}
}
