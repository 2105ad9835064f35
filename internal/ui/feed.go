package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// feed adapts a callback subscription (Store.Subscribe, Manager.Subscribe)
// to a channel a tea.Cmd can wait on. It holds only the latest value: a
// slow reader skips intermediate states instead of blocking the publisher.
type feed[V any] struct {
	mu     sync.Mutex
	ch     chan V
	closed bool
	unsub  func()
}

func newFeed[V any](subscribe func(func(V)) func()) *feed[V] {
	f := &feed[V]{ch: make(chan V, 1)}
	unsub := subscribe(f.push)
	f.mu.Lock()
	f.unsub = unsub
	f.mu.Unlock()
	return f
}

func (f *feed[V]) push(v V) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case <-f.ch:
	default:
	}
	f.ch <- v
}

// wait returns a command delivering the next value wrapped by wrap.
// It yields nil once the feed is closed.
func (f *feed[V]) wait(wrap func(V) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-f.ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

func (f *feed[V]) close() {
	f.mu.Lock()
	unsub := f.unsub
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	f.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
