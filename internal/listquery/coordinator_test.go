package listquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	res Result[string]
	err error
}

type call struct {
	ctx   context.Context
	plan  Plan
	reply chan reply
}

func (c *call) ok(total int, items ...string) {
	c.reply <- reply{res: Result[string]{Items: items, Total: total}}
}

func (c *call) fail(err error) {
	c.reply <- reply{err: err}
}

// fakeFetcher hands every fetch to the test, which answers it explicitly.
type fakeFetcher struct {
	calls     chan *call
	ignoreCtx bool
}

func newFakeFetcher(ignoreCtx bool) *fakeFetcher {
	return &fakeFetcher{calls: make(chan *call, 32), ignoreCtx: ignoreCtx}
}

func (f *fakeFetcher) Fetch(ctx context.Context, plan Plan) (Result[string], error) {
	c := &call{ctx: ctx, plan: plan, reply: make(chan reply, 1)}
	f.calls <- c
	if f.ignoreCtx {
		r := <-c.reply
		return r.res, r.err
	}
	select {
	case r := <-c.reply:
		return r.res, r.err
	case <-ctx.Done():
		return Result[string]{}, ctx.Err()
	}
}

func (f *fakeFetcher) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

func (f *fakeFetcher) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch: %s", c.plan)
	case <-time.After(wait):
	}
}

func newTestCoordinator(t *testing.T, f *fakeFetcher, authed bool) *Coordinator[string] {
	t.Helper()
	c := New[string](f, Options{
		Name:          "test",
		PageSize:      10,
		Debounce:      30 * time.Millisecond,
		Authenticated: authed,
	})
	t.Cleanup(c.Close)
	return c
}

func waitItems(t *testing.T, c *Coordinator[string], want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, c.Store().Snapshot().Page.Items)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCoordinatorWaitsForAuthentication(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, false)

	c.SetCategory("beauty")
	c.NextPage()
	c.Sync()
	f.none(t, 50*time.Millisecond)

	st := c.Store().Snapshot()
	assert.Equal(t, "beauty", st.Intent.Category)
	assert.Equal(t, 2, st.Intent.Page)

	c.SetAuthenticated(true)
	call := f.next(t)
	assert.Equal(t, Plan{Kind: PlanListByCategory, Category: "beauty", Skip: 10, Limit: 10}, call.plan)
}

func TestCoordinatorInitialFetch(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)

	call := f.next(t)
	assert.Equal(t, Plan{Kind: PlanListAll, Skip: 0, Limit: 10}, call.plan)
	require.Eventually(t, func() bool { return c.Store().Snapshot().Loading }, time.Second, 5*time.Millisecond)

	call.ok(208, "emily", "michael")
	waitItems(t, c, "emily", "michael")

	st := c.Store().Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, 21, st.Page.TotalPages())
	assert.Equal(t, uint64(1), st.LastAcceptedSeq)
}

func TestCoordinatorDebouncedSearchIssuesOnce(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(0)

	c.SetCategory("smartphones")
	f.next(t).ok(0)

	for _, text := range []string{"p", "ph", "pho", "phon", "phone"} {
		c.EditSearch(text)
	}
	c.Sync()

	st := c.Store().Snapshot()
	assert.Equal(t, AllCategories, st.Intent.Category, "search edit resets the category")
	assert.Equal(t, 1, st.Intent.Page)

	call := f.next(t)
	assert.Equal(t, Plan{Kind: PlanSearch, Query: "phone"}, call.plan)
	f.none(t, 100*time.Millisecond)

	call.ok(2, "iPhone 9", "iPhone X")
	waitItems(t, c, "iPhone 9", "iPhone X")
	assert.Equal(t, ModeSearch, c.Store().Snapshot().Mode)
}

func TestCoordinatorLateOlderResponseIsDiscarded(t *testing.T) {
	f := newFakeFetcher(true)
	c := newTestCoordinator(t, f, true)

	first := f.next(t)
	c.NextPage()
	second := f.next(t)
	require.Equal(t, 10, second.plan.Skip)

	second.ok(30, "page two")
	waitItems(t, c, "page two")

	first.ok(30, "page one")
	assert.Never(t, func() bool {
		items := c.Store().Snapshot().Page.Items
		return len(items) == 1 && items[0] == "page one"
	}, 100*time.Millisecond, 5*time.Millisecond)

	st := c.Store().Snapshot()
	assert.Equal(t, uint64(2), st.LastAcceptedSeq)
	assert.Equal(t, 2, st.Page.Page)
}

func TestCoordinatorNewFetchCancelsPrevious(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)

	first := f.next(t)
	c.SetCategory("beauty")
	second := f.next(t)

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("previous fetch was not cancelled")
	}
	assert.NoError(t, second.ctx.Err())

	second.ok(5, "mascara")
	waitItems(t, c, "mascara")
	assert.False(t, c.Store().Snapshot().HasError(), "the cancelled fetch's error is stale")
}

func TestCoordinatorCategoryClearsSearch(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(0)

	c.EditSearch("lip")
	f.next(t).ok(1, "lipstick")
	waitItems(t, c, "lipstick")

	c.SetCategory("fragrances")
	call := f.next(t)
	assert.Equal(t, Plan{Kind: PlanListByCategory, Category: "fragrances", Limit: 10}, call.plan)

	st := c.Store().Snapshot()
	assert.Empty(t, st.Intent.SearchText)
	assert.Equal(t, 1, st.Intent.Page)
	call.ok(1, "perfume")
	waitItems(t, c, "perfume")

	c.SetCategory("fragrances")
	c.Sync()
	f.none(t, 50*time.Millisecond)
}

func TestCoordinatorCategoryCancelsPendingSearch(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(0)

	c.EditSearch("watch")
	c.SetCategory("mens-watches")

	call := f.next(t)
	assert.Equal(t, PlanListByCategory, call.plan.Kind)
	f.none(t, 100*time.Millisecond)
}

func TestCoordinatorPagingIgnoredInSearch(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(0)

	c.EditSearch("phone")
	f.next(t).ok(40, "a")
	waitItems(t, c, "a")

	c.NextPage()
	c.SetPage(3)
	c.Sync()
	f.none(t, 50*time.Millisecond)
	assert.Equal(t, 1, c.Store().Snapshot().Intent.Page)
}

func TestCoordinatorPagingIgnoredWhileSearchSettles(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(0)

	c.SetCategory("beauty")
	f.next(t).ok(30, "mascara")
	waitItems(t, c, "mascara")

	c.EditSearch("lip")
	c.NextPage()
	c.Retry()
	c.SetPageSize(5)

	call := f.next(t)
	assert.Equal(t, Plan{Kind: PlanSearch, Query: "lip"}, call.plan)
	f.none(t, 100*time.Millisecond)

	in := c.Store().Snapshot().Intent
	assert.Equal(t, 1, in.Page)
	assert.Equal(t, 5, in.PageSize)
}

func TestCoordinatorLogoutKeepsUnsettledSearch(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(0)

	c.EditSearch("lip")
	c.SetAuthenticated(false)
	c.Sync()
	f.none(t, 100*time.Millisecond)

	c.SetAuthenticated(true)
	assert.Equal(t, Plan{Kind: PlanSearch, Query: "lip"}, f.next(t).plan)
}

func TestCoordinatorClampsPage(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(25, "a")
	waitItems(t, c, "a")

	c.SetPage(5)
	call := f.next(t)
	assert.Equal(t, 20, call.plan.Skip, "page is clamped to the last page")
	call.ok(25, "u")
	waitItems(t, c, "u")

	c.NextPage()
	c.Sync()
	f.none(t, 50*time.Millisecond)

	// The collection shrinks underneath the current page.
	c.Retry()
	shrunk := f.next(t)
	assert.Equal(t, 20, shrunk.plan.Skip)
	shrunk.ok(5, "late")

	corrective := f.next(t)
	assert.Equal(t, Plan{Kind: PlanListAll, Skip: 0, Limit: 10}, corrective.plan)
	corrective.ok(5, "a", "b", "c", "d", "e")
	waitItems(t, c, "a", "b", "c", "d", "e")

	st := c.Store().Snapshot()
	assert.Equal(t, 1, st.Page.Page)
	assert.Equal(t, 1, st.Intent.Page)
}

func TestCoordinatorPageSize(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)
	f.next(t).ok(100, "a")
	waitItems(t, c, "a")

	c.NextPage()
	f.next(t).ok(100, "b")
	waitItems(t, c, "b")

	c.SetPageSize(5)
	call := f.next(t)
	assert.Equal(t, Plan{Kind: PlanListAll, Skip: 0, Limit: 5}, call.plan)
	call.ok(100, "c")
	waitItems(t, c, "c")

	c.SetPageSize(0)
	c.SetPageSize(5)
	c.Sync()
	f.none(t, 50*time.Millisecond)
}

func TestCoordinatorErrorAndRetry(t *testing.T) {
	f := newFakeFetcher(false)
	c := newTestCoordinator(t, f, true)

	f.next(t).fail(errors.New("boom"))
	require.Eventually(t, func() bool {
		return c.Store().Snapshot().Err == "Failed to fetch: boom"
	}, 2*time.Second, 5*time.Millisecond)

	st := c.Store().Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Page.Items)

	c.Retry()
	f.next(t).ok(1, "back")
	waitItems(t, c, "back")
	assert.False(t, c.Store().Snapshot().HasError())
}

func TestCoordinatorLogoutIgnoresCompletions(t *testing.T) {
	f := newFakeFetcher(true)
	c := newTestCoordinator(t, f, true)

	first := f.next(t)
	first.ok(30, "a")
	waitItems(t, c, "a")

	c.NextPage()
	pending := f.next(t)

	c.SetAuthenticated(false)
	c.Sync()
	assert.Error(t, pending.ctx.Err(), "in-flight fetch is cancelled on logout")

	st := c.Store().Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Page.Items)
	assert.Equal(t, uint64(1), st.LastAcceptedSeq)

	pending.ok(30, "leaked")
	assert.Never(t, func() bool {
		return len(c.Store().Snapshot().Page.Items) > 0
	}, 100*time.Millisecond, 5*time.Millisecond)

	c.EditSearch("x")
	c.Sync()
	f.none(t, 100*time.Millisecond)

	c.SetAuthenticated(true)
	again := f.next(t)
	again.ok(30, "fresh")
	waitItems(t, c, "fresh")
}

func TestCoordinatorCloseIsIdempotent(t *testing.T) {
	f := newFakeFetcher(false)
	c := New[string](f, Options{PageSize: 10, Debounce: 10 * time.Millisecond, Authenticated: true})
	call := f.next(t)

	c.EditSearch("pending")
	c.Close()
	c.Close()

	select {
	case <-call.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("in-flight fetch not cancelled by Close")
	}

	c.NextPage()
	c.Sync()
	f.none(t, 50*time.Millisecond)
}
