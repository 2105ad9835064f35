package listquery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	s := NewStore[string](12)
	st := s.Snapshot()

	assert.Equal(t, 1, st.Page.Page)
	assert.Equal(t, 12, st.Page.PageSize)
	assert.Empty(t, st.Page.Items)
	assert.False(t, st.Loading)
	assert.False(t, st.HasError())
	assert.Equal(t, NewIntent(12), st.Intent)
}

func TestStoreApplyPageClampsPage(t *testing.T) {
	s := NewStore[int](10)
	s.applyPage(1, Page[int]{Items: []int{1, 2, 3}, Total: 25, Page: 5, PageSize: 10})

	st := s.Snapshot()
	assert.Equal(t, 3, st.Page.Page)
	assert.Equal(t, 3, st.Page.TotalPages())
	assert.Equal(t, uint64(1), st.LastAcceptedSeq)
}

func TestStoreLastAcceptedSeqNeverDecreases(t *testing.T) {
	s := NewStore[int](10)
	s.applyPage(6, Page[int]{Total: 1, Page: 1, PageSize: 10})
	s.applyPage(5, Page[int]{Total: 1, Page: 1, PageSize: 10})

	assert.Equal(t, uint64(6), s.Snapshot().LastAcceptedSeq)
}

func TestStoreLoadingAndError(t *testing.T) {
	s := NewStore[int](10)

	s.setLoading(true, ModeSearch)
	st := s.Snapshot()
	assert.True(t, st.Loading)
	assert.Equal(t, ModeSearch, st.Mode)

	s.setError("Failed to fetch: boom")
	st = s.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, "Failed to fetch: boom", st.Err)

	s.setLoading(true, ModeDefault)
	assert.False(t, s.Snapshot().HasError(), "loading clears the previous error")

	s.applyPage(1, Page[int]{Items: []int{7}, Total: 1, Page: 1, PageSize: 10})
	st = s.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, []int{7}, st.Page.Items)
}

func TestStoreResetKeepsLastAccepted(t *testing.T) {
	s := NewStore[int](10)
	s.applyPage(3, Page[int]{Items: []int{1}, Total: 40, Page: 2, PageSize: 10})
	s.setLoading(true, ModeDefault)

	s.reset()
	st := s.Snapshot()
	assert.Empty(t, st.Page.Items)
	assert.Equal(t, 1, st.Page.Page)
	assert.Equal(t, 10, st.Page.PageSize)
	assert.False(t, st.Loading)
	assert.Equal(t, uint64(3), st.LastAcceptedSeq)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore[int](10)

	var got []State[int]
	unsubscribe := s.Subscribe(func(st State[int]) {
		got = append(got, st)
	})

	require.Len(t, got, 1, "subscriber receives the current state immediately")

	s.setLoading(true, ModeDefault)
	s.applyPage(1, Page[int]{Items: []int{1}, Total: 1, Page: 1, PageSize: 10})
	require.Len(t, got, 3)
	assert.True(t, got[1].Loading)
	assert.False(t, got[2].Loading)
	assert.Equal(t, uint64(1), got[2].LastAcceptedSeq)

	unsubscribe()
	s.setError("gone")
	assert.Len(t, got, 3)
}

func TestStoreSubscribeConcurrentReaders(t *testing.T) {
	s := NewStore[int](10)

	var mu sync.Mutex
	var seqs []uint64
	unsubscribe := s.Subscribe(func(st State[int]) {
		mu.Lock()
		seqs = append(seqs, st.LastAcceptedSeq)
		mu.Unlock()
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Snapshot()
			}
		}()
	}
	for seq := uint64(1); seq <= 20; seq++ {
		s.applyPage(seq, Page[int]{Total: 1, Page: 1, PageSize: 10})
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seqs); i++ {
		assert.GreaterOrEqual(t, seqs[i], seqs[i-1])
	}
}
