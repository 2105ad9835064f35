package ui

// list.go is the generic list view shared by the people and catalog screens.
// It renders a listquery.Store and forwards edits to the Coordinator; it never
// fetches anything itself.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thesavant42/adminboard/internal/listquery"
	"github.com/thesavant42/adminboard/internal/models"
	"github.com/thesavant42/adminboard/internal/session"
)

// Collection describes how a list view renders one record type.
type Collection[T any] struct {
	Title      string // "People"
	Noun       string // "users"
	Columns    []ColumnSpec
	Row        func(T) table.Row
	ID         func(T) int
	Categories bool // enables the category picker
}

// ListAction is why a list view returned control to the app.
type ListAction int

const (
	ListBack ListAction = iota
	ListQuit
	ListOpen
	ListPickCategory
	ListPageSize
	ListSessionEnded
)

// ListResult is returned by RunList.
type ListResult struct {
	Action ListAction
	ID     int // record to open for ListOpen
}

// Coordinated is the part of listquery.Coordinator the list view drives.
type Coordinated[T any] interface {
	Store() *listquery.Store[T]
	EditSearch(text string)
	SetCategory(category string)
	NextPage()
	PrevPage()
	Retry()
}

// StatusSource reports session changes.
type StatusSource interface {
	Subscribe(fn func(session.Status)) func()
}

type listStateMsg[T any] struct {
	state listquery.State[T]
}

type sessionStatusMsg struct {
	status session.Status
}

// ListModel is the Bubble Tea model of a list view.
type ListModel[T any] struct {
	PageState
	coll    Collection[T]
	coord   Coordinated[T]
	states  *feed[listquery.State[T]]
	status  *feed[session.Status]
	state   listquery.State[T]
	table   table.Model
	search  textinput.Model
	typing  bool
	sent    string // last text passed to EditSearch
	settled bool   // the store's search text has caught up with sent
	spinner spinner.Model
	pager   paginator.Model
	result  ListResult
}

// NewListModel builds a list view over coord. Call Close when done with it.
func NewListModel[T any](coll Collection[T], coord Coordinated[T], sessions StatusSource) *ListModel[T] {
	layout := DefaultLayout()

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search " + coll.Noun
	ti.CharLimit = 100
	ti.Width = layout.InnerWidth - 30

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.ArabicFormat = "Page %d of %d"

	m := &ListModel[T]{
		PageState: NewPageState(layout),
		coll:      coll,
		coord:     coord,
		table:     InitTable(CalculateColumns(coll.Columns, layout.TableWidth), nil, layout),
		search:    ti,
		spinner:   NewAppSpinner(),
		pager:     pager,
		result:    ListResult{Action: ListBack},
		settled:   true,
	}

	m.states = newFeed(coord.Store().Subscribe)
	if sessions != nil {
		m.status = newFeed(sessions.Subscribe)
	}

	m.applyState(coord.Store().Snapshot())
	return m
}

// Close detaches the view from the store and session.
func (m *ListModel[T]) Close() {
	m.states.close()
	if m.status != nil {
		m.status.close()
	}
}

// Result is the action that ended the view.
func (m *ListModel[T]) Result() ListResult {
	return m.result
}

func (m *ListModel[T]) waitState() tea.Cmd {
	return m.states.wait(func(s listquery.State[T]) tea.Msg { return listStateMsg[T]{state: s} })
}

func (m *ListModel[T]) waitStatus() tea.Cmd {
	if m.status == nil {
		return nil
	}
	return m.status.wait(func(s session.Status) tea.Msg { return sessionStatusMsg{status: s} })
}

func (m *ListModel[T]) Init() tea.Cmd {
	return tea.Batch(StandardInit(), m.spinner.Tick, m.waitState(), m.waitStatus())
}

func (m *ListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetColumns(CalculateColumns(m.coll.Columns, m.Layout.TableWidth))
			m.table.SetHeight(m.Layout.TableHeight)
			m.search.Width = m.Layout.InnerWidth - 30
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listStateMsg[T]:
		m.applyState(msg.state)
		return m, m.waitState()

	case sessionStatusMsg:
		if msg.status != session.Authenticated {
			return m.finish(ListResult{Action: ListSessionEnded})
		}
		return m, m.waitStatus()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.finish(ListResult{Action: ListQuit})
		}
		if m.typing {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m *ListModel[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "down", "tab":
		m.typing = false
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.sent, m.settled = after, false
		m.coord.EditSearch(after)
	}
	return m, cmd
}

func (m *ListModel[T]) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.finish(ListResult{Action: ListBack})
	case "/":
		m.typing = true
		m.table.Blur()
		return m, m.search.Focus()
	case "x":
		m.search.SetValue("")
		m.sent, m.settled = "", true
		m.coord.SetCategory(listquery.AllCategories)
		return m, nil
	case "c":
		if m.coll.Categories {
			return m.finish(ListResult{Action: ListPickCategory})
		}
		return m, nil
	case "n", "right", "pgdown":
		m.coord.NextPage()
		return m, nil
	case "p", "left", "pgup":
		m.coord.PrevPage()
		return m, nil
	case "s":
		return m.finish(ListResult{Action: ListPageSize})
	case "r":
		m.coord.Retry()
		return m, nil
	case "enter":
		items := m.state.Page.Items
		if i := m.table.Cursor(); i >= 0 && i < len(items) {
			return m.finish(ListResult{Action: ListOpen, ID: m.coll.ID(items[i])})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ListModel[T]) finish(r ListResult) (tea.Model, tea.Cmd) {
	m.result = r
	m.Quitting = true
	return m, tea.Quit
}

func (m *ListModel[T]) applyState(s listquery.State[T]) {
	m.state = s

	rows := make([]table.Row, 0, len(s.Page.Items))
	for _, item := range s.Page.Items {
		rows = append(rows, m.coll.Row(item))
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c < 0 || c >= len(rows) {
		m.table.SetCursor(0)
	}

	if s.Intent.SearchText == m.sent {
		m.settled = true
	}
	if !m.typing && m.settled {
		m.search.SetValue(s.Intent.SearchText)
	}

	m.pager.PerPage = s.Page.PageSize
	m.pager.TotalPages = s.Page.TotalPages()
	m.pager.Page = s.Page.Page - 1
}

func (m *ListModel[T]) View() string {
	if m.Quitting {
		return ""
	}

	var content strings.Builder
	content.WriteString(ViewHeaderWithSubtitle(m.coll.Title, m.filterLine(), m.Layout.InnerWidth))
	content.WriteString(m.search.View())
	content.WriteString("\n\n")
	content.WriteString(RenderTableWithSelection(m.table, m.Layout))
	content.WriteString("\n")
	content.WriteString(m.statusLine())
	content.WriteString("\n")
	content.WriteString(RenderDim(m.footerLine()))

	return TwoBoxView(content.String(), m.helpText(), m.Layout)
}

func (m *ListModel[T]) filterLine() string {
	in := m.state.Intent
	var chips []string
	switch listquery.Resolve(in).Mode() {
	case listquery.ModeSearch:
		chips = append(chips, ChipActiveStyle.Render(fmt.Sprintf("Search: %q", strings.TrimSpace(in.SearchText))))
	case listquery.ModeCategory:
		chips = append(chips, ChipActiveStyle.Render("Category: "+models.FormatCategoryName(in.Category)))
	default:
		chips = append(chips, ChipInactiveStyle.Render("All "+m.coll.Noun))
	}
	chips = append(chips, ChipInactiveStyle.Render(fmt.Sprintf("%d per page", in.PageSize)))
	return strings.Join(chips, " ")
}

func (m *ListModel[T]) statusLine() string {
	switch {
	case m.state.Loading:
		return m.spinner.View() + " " + RenderNormal("Loading "+m.coll.Noun+"...")
	case m.state.Err != "":
		return RenderError(m.state.Err) + RenderDim("  (r to retry)")
	case len(m.state.Page.Items) == 0 && m.state.LastAcceptedSeq > 0:
		return RenderDim("No results")
	}
	return ""
}

func (m *ListModel[T]) footerLine() string {
	return footerText(m.state, m.pager)
}

// footerText is the pager line: page position and total outside search,
// the match count inside it.
func footerText[T any](s listquery.State[T], pager paginator.Model) string {
	if s.LastAcceptedSeq == 0 {
		return ""
	}
	if s.Mode == listquery.ModeSearch {
		return fmt.Sprintf("%d matches", s.Page.Total)
	}
	return fmt.Sprintf("%s | %d total", pager.View(), s.Page.Total)
}

func (m *ListModel[T]) helpText() string {
	if m.typing {
		return "type to search | Enter/Esc: done"
	}
	parts := []string{"/: search"}
	if m.coll.Categories {
		parts = append(parts, "c: category")
	}
	parts = append(parts, "x: clear", "n/p: page", "s: size", "r: retry", "Enter: open", "Esc: back")
	return strings.Join(parts, " | ")
}

// RunList shows the list view until the operator leaves it.
func RunList[T any](coll Collection[T], coord Coordinated[T], sessions StatusSource) (ListResult, error) {
	m := NewListModel(coll, coord, sessions)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return ListResult{Action: ListQuit}, fmt.Errorf("list view error: %w", err)
	}
	return m.Result(), nil
}
