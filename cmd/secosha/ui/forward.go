package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Latest hands messages from background goroutines to the program without
// blocking the producer. Bursts coalesce: only the newest pending message is sent.
type Latest struct {
	mu      sync.Mutex
	pending tea.Msg
	wake    chan struct{}
}

func NewLatest() *Latest {
	return &Latest{wake: make(chan struct{}, 1)}
}

// Push replaces the pending message. It never blocks.
func (l *Latest) Push(msg tea.Msg) {
	l.mu.Lock()
	l.pending = msg
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pump delivers pending messages through send until ctx is done.
func (l *Latest) Pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			l.mu.Lock()
			msg := l.pending
			l.pending = nil
			l.mu.Unlock()
			if msg != nil {
				send(msg)
			}
		}
	}
}
