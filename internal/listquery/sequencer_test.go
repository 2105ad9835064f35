package listquery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer() (*Sequencer[string], *Store[string]) {
	store := NewStore[string](10)
	return NewSequencer(store, nil, nil), store
}

func TestSequencerIssueAllocatesIncreasingSeq(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	env1, ok := seq.Issue(in, false)
	require.True(t, ok)
	in.Page = 2
	env2, ok := seq.Issue(in, false)
	require.True(t, ok)

	assert.Equal(t, uint64(1), env1.Seq)
	assert.Equal(t, uint64(2), env2.Seq)
	assert.Equal(t, Plan{Kind: PlanListAll, Skip: 10, Limit: 10}, env2.Plan)
	assert.True(t, store.Snapshot().Loading)
	assert.Equal(t, uint64(2), seq.Issued())
}

func TestSequencerLateOlderResponseIsDiscarded(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	var envs []Envelope
	for i := 0; i < 6; i++ {
		env, ok := seq.Issue(in, true)
		require.True(t, ok)
		envs = append(envs, env)
	}
	env5, env6 := envs[4], envs[5]
	require.Equal(t, uint64(5), env5.Seq)
	require.Equal(t, uint64(6), env6.Seq)

	assert.True(t, seq.Complete(env6, Result[string]{Items: []string{"new"}, Total: 1}, nil))
	assert.False(t, seq.Complete(env5, Result[string]{Items: []string{"old"}, Total: 1}, nil))

	st := store.Snapshot()
	assert.Equal(t, uint64(6), st.LastAcceptedSeq)
	assert.Equal(t, []string{"new"}, st.Page.Items)
}

func TestSequencerOlderCompletionWhileNewerPending(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	env1, _ := seq.Issue(in, false)
	in.Page = 2
	_, _ = seq.Issue(in, false)

	assert.False(t, seq.Complete(env1, Result[string]{Items: []string{"a"}, Total: 1}, nil))
	st := store.Snapshot()
	assert.True(t, st.Loading, "the newer request is still loading")
	assert.Empty(t, st.Page.Items)
}

func TestSequencerStaleFailureIsDiscarded(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	env1, _ := seq.Issue(in, false)
	in.Category = "beauty"
	env2, _ := seq.Issue(in, false)

	require.True(t, seq.Complete(env2, Result[string]{Items: []string{"lipstick"}, Total: 1}, nil))
	assert.False(t, seq.Complete(env1, Result[string]{}, errors.New("connection reset")))

	st := store.Snapshot()
	assert.False(t, st.HasError())
	assert.Equal(t, []string{"lipstick"}, st.Page.Items)
}

func TestSequencerFailureSetsMessage(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	in.Category = "beauty"
	env, _ := seq.Issue(in, false)
	require.True(t, seq.Complete(env, Result[string]{}, errors.New("status 500")))

	st := store.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, "Failed to fetch category beauty: status 500", st.Err)
}

func TestSequencerCustomErrorFormatter(t *testing.T) {
	store := NewStore[string](10)
	seq := NewSequencer(store, func(plan Plan, err error) string {
		return "nope: " + plan.Kind.String()
	}, nil)

	env, _ := seq.Issue(Intent{SearchText: "x", Page: 1, PageSize: 10}, false)
	seq.Complete(env, Result[string]{}, errors.New("boom"))
	assert.Equal(t, "nope: search", store.Snapshot().Err)
}

func TestSequencerDeduplicatesEqualPlans(t *testing.T) {
	seq, _ := newTestSequencer()

	in := NewIntent(10)
	env, ok := seq.Issue(in, false)
	require.True(t, ok)
	seq.Complete(env, Result[string]{Total: 0}, nil)

	_, ok = seq.Issue(in, false)
	assert.False(t, ok, "an equal plan is not re-issued")

	_, ok = seq.Issue(in, true)
	assert.True(t, ok, "force re-issues")
}

func TestSequencerReissuesEqualPlanAfterError(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	env, _ := seq.Issue(in, false)
	seq.Complete(env, Result[string]{}, errors.New("offline"))
	require.True(t, store.Snapshot().HasError())

	env2, ok := seq.Issue(in, false)
	require.True(t, ok)
	assert.False(t, store.Snapshot().HasError(), "issuing clears the error")

	seq.Complete(env2, Result[string]{Items: []string{"ok"}, Total: 1}, nil)
	assert.Equal(t, []string{"ok"}, store.Snapshot().Page.Items)
}

func TestSequencerSearchLandsOnPageOne(t *testing.T) {
	seq, store := newTestSequencer()

	env, _ := seq.Issue(Intent{SearchText: "phone", Category: AllCategories, Page: 3, PageSize: 10}, false)
	seq.Complete(env, Result[string]{Items: []string{"a", "b"}, Total: 2}, nil)

	st := store.Snapshot()
	assert.Equal(t, 1, st.Page.Page)
	assert.Equal(t, ModeSearch, st.Mode)
}

func TestSequencerSuspend(t *testing.T) {
	seq, store := newTestSequencer()

	in := NewIntent(10)
	env1, _ := seq.Issue(in, false)
	require.True(t, seq.Complete(env1, Result[string]{Items: []string{"a"}, Total: 1}, nil))

	in.Page = 2
	env2, _ := seq.Issue(in, false)

	seq.Suspend()
	assert.True(t, seq.Suspended())
	st := store.Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Page.Items)
	assert.Equal(t, uint64(1), st.LastAcceptedSeq)

	_, ok := seq.Issue(in, true)
	assert.False(t, ok, "nothing is issued while suspended")
	assert.False(t, seq.Complete(env2, Result[string]{Items: []string{"late"}, Total: 1}, nil))

	seq.Resume()
	assert.False(t, seq.Complete(env2, Result[string]{Items: []string{"late"}, Total: 1}, nil),
		"requests issued before the suspend stay fenced")

	env3, ok := seq.Issue(in, false)
	require.True(t, ok, "the plan is forgotten on suspend")
	assert.True(t, seq.Complete(env3, Result[string]{Items: []string{"fresh"}, Total: 11}, nil))
	assert.Equal(t, []string{"fresh"}, store.Snapshot().Page.Items)
}
