package listquery

import "sync"

// Page is one accepted page of results. It is replaced wholesale on every
// accepted response and never mutated afterwards.
type Page[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// TotalPages is the page count for this page's total and size.
func (p Page[T]) TotalPages() int {
	return TotalPages(p.Total, p.PageSize)
}

// State is what presentation renders from.
type State[T any] struct {
	Page            Page[T]
	Loading         bool
	Err             string
	LastAcceptedSeq uint64

	// Intent is the intent as currently edited, including edits whose fetch
	// has not been issued yet (a search still inside its debounce window).
	Intent Intent
	// Mode of the last issued plan.
	Mode Mode
}

// HasError reports whether the last authoritative request failed.
func (s State[T]) HasError() bool {
	return s.Err != ""
}

// Store holds the last accepted page for one list view. Presentation reads it
// through Snapshot and Subscribe; only the Sequencer mutates it.
type Store[T any] struct {
	pub     sync.Mutex // serializes subscriber notification
	mu      sync.RWMutex
	state   State[T]
	subs    map[int]func(State[T])
	nextSub int
}

// NewStore returns an empty store on page 1.
func NewStore[T any](pageSize int) *Store[T] {
	return &Store[T]{
		state: State[T]{
			Page:   Page[T]{Page: 1, PageSize: pageSize},
			Intent: NewIntent(pageSize),
		},
		subs: make(map[int]func(State[T])),
	}
}

// Snapshot returns the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive every new state, starting with the current
// one. Calls to fn are serialized and in mutation order; fn must not block
// and must not call back into the store. The returned function unsubscribes.
func (s *Store[T]) Subscribe(fn func(State[T])) func() {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.state
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store[T]) mutate(fn func(*State[T])) {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.mu.Lock()
	fn(&s.state)
	next := s.state
	subs := make([]func(State[T]), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(next)
	}
}

// applyPage installs an accepted page. The displayed page number is clamped
// into range so the store never shows a page past the end.
func (s *Store[T]) applyPage(seq uint64, page Page[T]) {
	s.mutate(func(st *State[T]) {
		if page.PageSize < 1 {
			page.PageSize = 1
		}
		if page.Total < 0 {
			page.Total = 0
		}
		page.Page = ClampPage(page.Page, page.TotalPages())
		st.Page = page
		st.Loading = false
		st.Err = ""
		if seq > st.LastAcceptedSeq {
			st.LastAcceptedSeq = seq
		}
	})
}

func (s *Store[T]) setLoading(loading bool, mode Mode) {
	s.mutate(func(st *State[T]) {
		st.Loading = loading
		st.Mode = mode
		if loading {
			st.Err = ""
		}
	})
}

func (s *Store[T]) setError(msg string) {
	s.mutate(func(st *State[T]) {
		st.Err = msg
		st.Loading = false
	})
}

func (s *Store[T]) setIntent(in Intent) {
	s.mutate(func(st *State[T]) {
		st.Intent = in
	})
}

// reset drops the visible page, keeping LastAcceptedSeq.
func (s *Store[T]) reset() {
	s.mutate(func(st *State[T]) {
		st.Page = Page[T]{Page: 1, PageSize: st.Page.PageSize}
		st.Loading = false
		st.Err = ""
	})
}
