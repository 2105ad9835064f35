package listquery

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Result is what a Fetcher returns for a plan.
type Result[T any] struct {
	Items []T
	Total int
}

// Fetcher performs the remote call for a plan.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, plan Plan) (Result[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, plan Plan) (Result[T], error)

// Fetch calls f.
func (f FetcherFunc[T]) Fetch(ctx context.Context, plan Plan) (Result[T], error) {
	return f(ctx, plan)
}

// Envelope tags one issued fetch with its sequence number.
type Envelope struct {
	Seq      uint64
	Intent   Intent
	Plan     Plan
	IssuedAt time.Time
}

// ErrorFormatter turns a fetch failure into the message shown to the user.
type ErrorFormatter func(plan Plan, err error) string

// Sequencer issues fetches and fences their completions: only the response
// to the most recently issued envelope may reach the store. It is the only
// writer of its Store and is not safe for concurrent use; the Coordinator
// drives it from a single goroutine.
type Sequencer[T any] struct {
	store     *Store[T]
	formatErr ErrorFormatter
	logger    *log.Logger
	now       func() time.Time

	issued    uint64
	fence     uint64 // envelopes at or below this were issued before a Suspend
	lastPlan  Plan
	hasPlan   bool
	suspended bool
}

// NewSequencer returns a sequencer writing to store. formatErr may be nil.
func NewSequencer[T any](store *Store[T], formatErr ErrorFormatter, logger *log.Logger) *Sequencer[T] {
	if formatErr == nil {
		formatErr = defaultErrorMessage
	}
	return &Sequencer[T]{
		store:     store,
		formatErr: formatErr,
		logger:    logger,
		now:       time.Now,
	}
}

// Store returns the store this sequencer writes to.
func (s *Sequencer[T]) Store() *Store[T] {
	return s.store
}

// Issued returns the highest sequence number issued so far.
func (s *Sequencer[T]) Issued() uint64 {
	return s.issued
}

// Issue resolves intent and, when a fetch is needed, allocates the next
// sequence number and marks the store loading. The caller launches the
// returned envelope's fetch and reports back through Complete.
//
// A plan equal to the last issued one is not re-issued unless force is set
// or the store currently shows an error.
func (s *Sequencer[T]) Issue(intent Intent, force bool) (Envelope, bool) {
	if s.suspended {
		return Envelope{}, false
	}

	plan := Resolve(intent)
	if !force && s.hasPlan && plan == s.lastPlan && !s.store.Snapshot().HasError() {
		return Envelope{}, false
	}

	s.issued++
	s.lastPlan = plan
	s.hasPlan = true

	env := Envelope{
		Seq:      s.issued,
		Intent:   intent,
		Plan:     plan,
		IssuedAt: s.now(),
	}

	s.store.setLoading(true, plan.Mode())

	if s.logger != nil {
		s.logger.Debug("issue", "seq", env.Seq, "plan", plan.String())
	}
	return env, true
}

// Complete applies a finished fetch if env is still the latest issued
// envelope. Stale results and stale failures are dropped silently.
// It reports whether the store was updated.
func (s *Sequencer[T]) Complete(env Envelope, res Result[T], err error) bool {
	if s.suspended || env.Seq != s.issued || env.Seq <= s.fence {
		if s.logger != nil {
			s.logger.Debug("discard stale response", "seq", env.Seq, "latest", s.issued, "err", err)
		}
		return false
	}

	if err != nil {
		msg := s.formatErr(env.Plan, err)
		if s.logger != nil {
			s.logger.Warn("fetch failed", "seq", env.Seq, "plan", env.Plan.String(), "error", err)
		}
		s.store.setError(msg)
		return true
	}

	page := Page[T]{
		Items:    res.Items,
		Total:    res.Total,
		Page:     env.Intent.Page,
		PageSize: env.Intent.PageSize,
	}
	// Search results are not paginated here; they always land on page 1.
	if env.Plan.Kind == PlanSearch {
		page.Page = 1
	}
	s.store.applyPage(env.Seq, page)

	if s.logger != nil {
		s.logger.Debug("accept", "seq", env.Seq, "items", len(res.Items), "total", res.Total)
	}
	return true
}

// Suspend stops the sequencer: no new fetches are issued and every
// completion is discarded until Resume. The visible page is dropped.
func (s *Sequencer[T]) Suspend() {
	s.suspended = true
	s.fence = s.issued
	s.hasPlan = false
	s.store.reset()
}

// Resume re-enables issuing after Suspend.
func (s *Sequencer[T]) Resume() {
	s.suspended = false
}

// Suspended reports whether the sequencer is suspended.
func (s *Sequencer[T]) Suspended() bool {
	return s.suspended
}

func defaultErrorMessage(plan Plan, err error) string {
	switch plan.Kind {
	case PlanSearch:
		return "Failed to search: " + err.Error()
	case PlanListByCategory:
		return "Failed to fetch category " + plan.Category + ": " + err.Error()
	default:
		return "Failed to fetch: " + err.Error()
	}
}
