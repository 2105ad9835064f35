package listquery

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/adminboard/internal/debounce"
)

// DefaultDebounce is the quiet period applied to search text edits.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Coordinator.
type Options struct {
	Name          string // used in log lines, e.g. "people"
	PageSize      int
	Debounce      time.Duration
	FormatError   ErrorFormatter
	Logger        *log.Logger
	Authenticated bool // start already authenticated
}

// Coordinator reconciles search text, category and page edits for one list
// view into an ordered stream of fetches. All of its logic runs on a single
// event-loop goroutine: public methods, debounce callbacks and fetch
// completions are posted to that loop, so nothing below runs in parallel.
//
// Each list view owns its own Coordinator and must Close it when discarded.
type Coordinator[T any] struct {
	name     string
	fetcher  Fetcher[T]
	store    *Store[T]
	seq      *Sequencer[T]
	search   debounce.Timer[string]
	delay    time.Duration
	logger   *log.Logger
	events   chan func()
	done     chan struct{}
	stopped  chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	closeMux sync.Once

	// Owned by the loop goroutine.
	intent    Intent
	authed    bool
	searchGen uint64
	inFlight  context.CancelFunc

	// Search text waiting for the debounce to settle.
	pendingSearch string
	searchPending bool
}

// New starts a coordinator for fetcher.
func New[T any](fetcher Fetcher[T], opts Options) *Coordinator[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger != nil && opts.Name != "" {
		logger = logger.WithPrefix(opts.Name)
	}

	store := NewStore[T](opts.PageSize)
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator[T]{
		name:    opts.Name,
		fetcher: fetcher,
		store:   store,
		seq:     NewSequencer(store, opts.FormatError, logger),
		delay:   opts.Debounce,
		logger:  logger,
		events:  make(chan func(), 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		intent:  NewIntent(opts.PageSize),
	}

	go c.loop()

	if opts.Authenticated {
		c.SetAuthenticated(true)
	}
	return c
}

// Name returns the name the coordinator was created with.
func (c *Coordinator[T]) Name() string {
	return c.name
}

// Store returns the store presentation renders from.
func (c *Coordinator[T]) Store() *Store[T] {
	return c.store
}

// EditSearch records a search text edit. The fetch is issued once the text
// has been stable for the debounce delay. A non-blank edit clears the
// category filter; every edit returns to page 1.
func (c *Coordinator[T]) EditSearch(text string) {
	c.post(func() { c.editSearch(text) })
}

// SetCategory selects a category (AllCategories or "" for none), clearing
// any search text and returning to page 1.
func (c *Coordinator[T]) SetCategory(category string) {
	c.post(func() { c.setCategory(category) })
}

// SetPage moves to page, clamped to the known page range.
// It is ignored while search results are shown or a search edit is settling.
func (c *Coordinator[T]) SetPage(page int) {
	c.post(func() { c.setPage(page) })
}

// NextPage moves one page forward.
func (c *Coordinator[T]) NextPage() {
	c.post(func() { c.setPage(c.intent.Page + 1) })
}

// PrevPage moves one page back.
func (c *Coordinator[T]) PrevPage() {
	c.post(func() { c.setPage(c.intent.Page - 1) })
}

// SetPageSize changes the page size and returns to page 1.
func (c *Coordinator[T]) SetPageSize(size int) {
	c.post(func() { c.setPageSize(size) })
}

// Retry re-issues the current intent even if it was already fetched. It does
// nothing while a search edit is settling.
func (c *Coordinator[T]) Retry() {
	c.post(c.retry)
}

// SetAuthenticated gates fetching on the session state. Nothing is fetched
// before the first true; false drops pending work and ignores completions.
func (c *Coordinator[T]) SetAuthenticated(authed bool) {
	c.post(func() { c.setAuthenticated(authed) })
}

// Close stops the debounce timer, cancels in-flight fetches and stops the
// loop. It is safe to call more than once.
func (c *Coordinator[T]) Close() {
	c.closeMux.Do(func() {
		c.search.Stop()
		close(c.done)
		c.cancel()
		<-c.stopped
	})
}

// Sync blocks until every event posted before it has been handled.
func (c *Coordinator[T]) Sync() {
	ack := make(chan struct{})
	c.post(func() { close(ack) })
	select {
	case <-ack:
	case <-c.stopped:
	}
}

func (c *Coordinator[T]) post(fn func()) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

func (c *Coordinator[T]) loop() {
	defer close(c.stopped)
	for {
		select {
		case fn := <-c.events:
			fn()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator[T]) editSearch(text string) {
	if strings.TrimSpace(text) != "" {
		c.intent.Category = AllCategories
	}
	c.intent.Page = 1
	c.store.setIntent(c.intent)

	c.pendingSearch, c.searchPending = text, true
	c.searchGen++
	gen := c.searchGen
	c.search.Schedule(text, c.delay, func(v string) {
		c.post(func() { c.settleSearch(gen, v) })
	})
}

func (c *Coordinator[T]) settleSearch(gen uint64, text string) {
	// An edit or category change queued after the timer fired supersedes it.
	if gen != c.searchGen {
		return
	}
	c.pendingSearch, c.searchPending = "", false
	c.intent.SearchText = text
	c.intent.Page = 1
	c.issue(false)
}

func (c *Coordinator[T]) setCategory(category string) {
	if category == "" {
		category = AllCategories
	}
	c.cancelPendingSearch()

	c.intent.SearchText = ""
	c.intent.Category = category
	c.intent.Page = 1
	c.issue(false)
}

func (c *Coordinator[T]) cancelPendingSearch() {
	c.search.Cancel()
	c.searchGen++
	c.pendingSearch, c.searchPending = "", false
}

func (c *Coordinator[T]) retry() {
	if c.searchPending {
		return
	}
	c.issue(true)
}

func (c *Coordinator[T]) setPage(page int) {
	// The settling edit lands on page 1 either way.
	if c.searchPending || Resolve(c.intent).Kind == PlanSearch {
		return
	}
	st := c.store.Snapshot()
	if st.LastAcceptedSeq > 0 && !st.Loading {
		page = ClampPage(page, st.Page.TotalPages())
	} else if page < 1 {
		page = 1
	}
	if page == c.intent.Page {
		return
	}
	c.intent.Page = page
	c.issue(false)
}

func (c *Coordinator[T]) setPageSize(size int) {
	if size <= 0 || size == c.intent.PageSize {
		return
	}
	c.intent.PageSize = size
	c.intent.Page = 1
	if c.searchPending {
		// The settling edit issues with the new size.
		c.store.setIntent(c.intent)
		return
	}
	c.issue(false)
}

func (c *Coordinator[T]) setAuthenticated(authed bool) {
	if authed == c.authed {
		return
	}
	c.authed = authed

	if !authed {
		// Keep the typed text so the next login fetches it.
		if c.searchPending {
			c.intent.SearchText = c.pendingSearch
		}
		c.cancelPendingSearch()
		if c.inFlight != nil {
			c.inFlight()
			c.inFlight = nil
		}
		c.seq.Suspend()
		if c.logger != nil {
			c.logger.Info("session ended, fetching suspended")
		}
		return
	}

	c.seq.Resume()
	c.issue(false)
}

func (c *Coordinator[T]) issue(force bool) {
	c.store.setIntent(c.intent)
	if !c.authed {
		return
	}

	env, ok := c.seq.Issue(c.intent, force)
	if !ok {
		return
	}

	// The older request may still finish; fencing discards it. Cancelling
	// just frees the connection early.
	if c.inFlight != nil {
		c.inFlight()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.inFlight = cancel

	go func() {
		res, err := c.fetcher.Fetch(ctx, env.Plan)
		c.post(func() { c.complete(env, res, err, cancel) })
	}()
}

func (c *Coordinator[T]) complete(env Envelope, res Result[T], err error, cancel context.CancelFunc) {
	cancel()
	if !c.seq.Complete(env, res, err) {
		return
	}
	c.inFlight = nil

	if err != nil || env.Plan.Kind == PlanSearch {
		return
	}

	// A shrunken result set can leave the requested page past the end.
	last := TotalPages(res.Total, env.Intent.PageSize)
	if env.Intent.Page > last && c.intent == env.Intent {
		if c.logger != nil {
			c.logger.Debug("page out of range, clamping", "page", env.Intent.Page, "last", last)
		}
		c.intent.Page = last
		c.issue(false)
	}
}
