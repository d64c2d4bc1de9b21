package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TimerServiceImpl implements TimerService
type TimerServiceImpl struct {
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTimerService creates a countdown that ticks once per second
func NewTimerService(logger *slog.Logger) *TimerServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimerServiceImpl{interval: time.Second, logger: logger}
}

// Start begins counting down d. onTick receives the remaining time right away
// and after every tick; onDone runs once when the countdown reaches zero.
// Both run on the timer goroutine.
func (s *TimerServiceImpl) Start(ctx context.Context, d time.Duration, onTick func(time.Duration), onDone func()) error {
	if d <= 0 {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrTimerRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(runCtx, done, d, onTick, onDone)
	s.logger.Info("timer started", "duration", d)
	return nil
}

func (s *TimerServiceImpl) run(ctx context.Context, done chan struct{}, d time.Duration, onTick func(time.Duration), onDone func()) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	remaining := d
	if onTick != nil {
		onTick(remaining)
	}
	for {
		select {
		case <-ctx.Done():
			s.finish(done)
			return
		case <-ticker.C:
			remaining -= s.interval
			if remaining <= 0 {
				s.finish(done)
				if onTick != nil {
					onTick(0)
				}
				if onDone != nil {
					onDone()
				}
				s.logger.Info("timer finished")
				return
			}
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}

// finish clears the running state if it still belongs to this run
func (s *TimerServiceImpl) finish(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.cancel()
		s.cancel = nil
		s.done = nil
	}
}

// Stop cancels the countdown and waits for its goroutine to exit.
// It must not be called from onTick or onDone.
func (s *TimerServiceImpl) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("timer stopped")
}

// Running reports whether a countdown is active
func (s *TimerServiceImpl) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// FormatRemaining renders a duration as MM:SS, or H:MM:SS from one hour up
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	sec := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
