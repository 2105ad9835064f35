package ui

import (
	"strconv"
	"testing"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesavant42/adminboard/internal/listquery"
	"github.com/thesavant42/adminboard/internal/session"
)

type fakeCoord struct {
	store    *listquery.Store[int]
	searches []string
	cats     []string
	next     int
	prev     int
	retries  int
}

func newFakeCoord() *fakeCoord {
	return &fakeCoord{store: listquery.NewStore[int](10)}
}

func (f *fakeCoord) Store() *listquery.Store[int] { return f.store }
func (f *fakeCoord) EditSearch(text string)       { f.searches = append(f.searches, text) }
func (f *fakeCoord) SetCategory(c string)         { f.cats = append(f.cats, c) }
func (f *fakeCoord) NextPage()                    { f.next++ }
func (f *fakeCoord) PrevPage()                    { f.prev++ }
func (f *fakeCoord) Retry()                       { f.retries++ }

type fakeSessions struct{}

func (fakeSessions) Subscribe(fn func(session.Status)) func() {
	fn(session.Authenticated)
	return func() {}
}

func numbers(categories bool) Collection[int] {
	return Collection[int]{
		Title:      "Numbers",
		Noun:       "numbers",
		Columns:    SingleColumnSpec("N"),
		Row:        func(n int) table.Row { return table.Row{strconv.Itoa(n)} },
		ID:         func(n int) int { return n },
		Categories: categories,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m *ListModel[int], msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

func TestListModelSearchTyping(t *testing.T) {
	coord := newFakeCoord()
	m := NewListModel(numbers(false), coord, nil)
	defer m.Close()

	send(t, m, runes("/"))
	send(t, m, runes("a"))
	send(t, m, runes("b"))
	send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, []string{"a", "ab", "a"}, coord.searches)

	// Leaving the input hands keys back to the list.
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	send(t, m, runes("n"))
	assert.Equal(t, 1, coord.next)
	assert.Equal(t, []string{"a", "ab", "a"}, coord.searches)
}

func TestListModelKeys(t *testing.T) {
	coord := newFakeCoord()
	m := NewListModel(numbers(false), coord, nil)
	defer m.Close()

	send(t, m, runes("n"))
	send(t, m, runes("p"))
	send(t, m, runes("r"))
	send(t, m, runes("x"))
	send(t, m, runes("c"))

	assert.Equal(t, 1, coord.next)
	assert.Equal(t, 1, coord.prev)
	assert.Equal(t, 1, coord.retries)
	assert.Equal(t, []string{listquery.AllCategories}, coord.cats)
	assert.False(t, m.Quitting, "people have no category picker")
}

func TestListModelHandsOffToApp(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want ListAction
	}{
		{"category", runes("c"), ListPickCategory},
		{"page size", runes("s"), ListPageSize},
		{"back", tea.KeyMsg{Type: tea.KeyEsc}, ListBack},
		{"quit", tea.KeyMsg{Type: tea.KeyCtrlC}, ListQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewListModel(numbers(true), newFakeCoord(), nil)
			defer m.Close()

			cmd := send(t, m, tt.key)
			require.NotNil(t, cmd)
			assert.True(t, m.Quitting)
			assert.Equal(t, tt.want, m.Result().Action)
		})
	}
}

func TestListModelOpensSelectedRow(t *testing.T) {
	m := NewListModel(numbers(false), newFakeCoord(), nil)
	defer m.Close()

	// Nothing to open yet.
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Quitting)

	st := listquery.State[int]{
		Page:            listquery.Page[int]{Items: []int{41, 42, 43}, Total: 3, Page: 1, PageSize: 10},
		LastAcceptedSeq: 1,
		Intent:          listquery.NewIntent(10),
	}
	send(t, m, listStateMsg[int]{state: st})
	send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ListResult{Action: ListOpen, ID: 42}, m.Result())
}

func TestListModelSearchBoxFollowsStore(t *testing.T) {
	m := NewListModel(numbers(true), newFakeCoord(), nil)
	defer m.Close()

	state := func(search string) listStateMsg[int] {
		in := listquery.NewIntent(10)
		in.SearchText = search
		return listStateMsg[int]{state: listquery.State[int]{Intent: in}}
	}

	send(t, m, state("lip"))
	assert.Equal(t, "lip", m.search.Value())

	// A category chosen elsewhere clears the text.
	send(t, m, state(""))
	assert.Empty(t, m.search.Value())

	// Text typed but not yet settled survives older states.
	send(t, m, runes("/"))
	send(t, m, runes("a"))
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	send(t, m, state(""))
	assert.Equal(t, "a", m.search.Value())

	send(t, m, state("a"))
	send(t, m, state("mascara"))
	assert.Equal(t, "mascara", m.search.Value())
}

func TestListModelLeavesWhenSessionEnds(t *testing.T) {
	m := NewListModel(numbers(false), newFakeCoord(), fakeSessions{})
	defer m.Close()

	require.NotNil(t, send(t, m, sessionStatusMsg{status: session.Authenticated}))
	assert.False(t, m.Quitting)

	send(t, m, sessionStatusMsg{status: session.Unauthenticated})
	assert.True(t, m.Quitting)
	assert.Equal(t, ListSessionEnded, m.Result().Action)
}

func TestListModelStatusLine(t *testing.T) {
	m := NewListModel(numbers(false), newFakeCoord(), nil)
	defer m.Close()

	send(t, m, listStateMsg[int]{state: listquery.State[int]{Loading: true, Page: listquery.Page[int]{Page: 1, PageSize: 10}}})
	assert.Contains(t, m.statusLine(), "Loading numbers...")

	send(t, m, listStateMsg[int]{state: listquery.State[int]{Err: "Failed to fetch numbers: boom", Page: listquery.Page[int]{Page: 1, PageSize: 10}}})
	assert.Contains(t, m.statusLine(), "Failed to fetch numbers: boom")
	assert.Contains(t, m.statusLine(), "r to retry")

	send(t, m, listStateMsg[int]{state: listquery.State[int]{LastAcceptedSeq: 3, Page: listquery.Page[int]{Page: 1, PageSize: 10}}})
	assert.Contains(t, m.statusLine(), "No results")
}

func TestFooterText(t *testing.T) {
	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.ArabicFormat = "Page %d of %d"
	pager.Page = 1
	pager.TotalPages = 10

	assert.Empty(t, footerText(listquery.State[int]{}, pager))

	listing := listquery.State[int]{
		Page:            listquery.Page[int]{Total: 100, Page: 2, PageSize: 10},
		LastAcceptedSeq: 4,
	}
	assert.Equal(t, "Page 2 of 10 | 100 total", footerText(listing, pager))

	search := listing
	search.Mode = listquery.ModeSearch
	search.Page.Total = 7
	assert.Equal(t, "7 matches", footerText(search, pager))
}

func TestFeedKeepsLatest(t *testing.T) {
	var publish func(int)
	f := newFeed(func(fn func(int)) func() {
		publish = fn
		return func() { publish = nil }
	})

	publish(1)
	publish(2)
	publish(3)

	msg := f.wait(func(v int) tea.Msg { return v })()
	assert.Equal(t, 3, msg)

	f.close()
	assert.Nil(t, publish)
	assert.Nil(t, f.wait(func(v int) tea.Msg { return v })())
}
