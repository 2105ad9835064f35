package ui

// picker.go is the catalog's category picker: a fuzzy-filtered single column
// selector with "All categories" pinned to the top.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/thesavant42/adminboard/internal/listquery"
	"github.com/thesavant42/adminboard/internal/models"
)

const allCategoriesLabel = "All categories"

type pickerItem struct {
	label string
	slug  string
}

type pickerItems []pickerItem

func (p pickerItems) String(i int) string { return p[i].label }
func (p pickerItems) Len() int            { return len(p) }

func newPickerItems(categories []models.Category) pickerItems {
	items := make(pickerItems, 0, len(categories)+1)
	items = append(items, pickerItem{label: allCategoriesLabel, slug: listquery.AllCategories})
	for _, c := range categories {
		items = append(items, pickerItem{label: c.DisplayName(), slug: c.Slug})
	}
	return items
}

// filterItems keeps the items matching query, best match first. "All
// categories" stays on top whenever it matches.
func filterItems(items pickerItems, query string) pickerItems {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	matches := fuzzy.FindFrom(query, items)
	out := make(pickerItems, 0, len(matches))
	for _, match := range matches {
		if items[match.Index].slug == listquery.AllCategories {
			out = append(pickerItems{items[match.Index]}, out...)
			continue
		}
		out = append(out, items[match.Index])
	}
	return out
}

// CategoryPickerModel selects a category slug
type CategoryPickerModel struct {
	PageState
	items    pickerItems
	visible  pickerItems
	current  string
	filter   textinput.Model
	table    table.Model
	selected string
	chosen   bool
}

// NewCategoryPickerModel builds a picker with the cursor on current.
func NewCategoryPickerModel(categories []models.Category, current string) CategoryPickerModel {
	layout := DefaultLayout()

	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type to narrow"
	ti.CharLimit = 50
	ti.Focus()

	m := CategoryPickerModel{
		PageState: NewPageState(layout),
		items:     newPickerItems(categories),
		current:   current,
		filter:    ti,
		table:     InitTable(CalculateColumns(SingleColumnSpec("Category"), layout.TableWidth), nil, layout),
	}
	m.refresh()
	for i, it := range m.visible {
		if it.slug == current {
			m.table.SetCursor(i)
			break
		}
	}
	return m
}

func (m *CategoryPickerModel) refresh() {
	m.visible = filterItems(m.items, m.filter.Value())
	rows := make([]table.Row, len(m.visible))
	for i, it := range m.visible {
		label := it.label
		if it.slug == m.current {
			label += "  (current)"
		}
		rows[i] = table.Row{label}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}

func (m CategoryPickerModel) Init() tea.Cmd {
	return tea.Batch(StandardInit(), textinput.Blink)
}

func (m CategoryPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetColumns(CalculateColumns(SingleColumnSpec("Category"), m.Layout.TableWidth))
			m.table.SetHeight(m.Layout.TableHeight)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if i := m.table.Cursor(); i >= 0 && i < len(m.visible) {
				m.selected = m.visible[i].slug
				m.chosen = true
			}
			m.Quitting = true
			return m, tea.Quit
		case "up", "down", "pgup", "pgdown", "ctrl+p", "ctrl+n":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

		before := m.filter.Value()
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.refresh()
		}
		return m, cmd
	}

	return m, nil
}

func (m CategoryPickerModel) View() string {
	if m.Quitting {
		return ""
	}

	var content strings.Builder
	subtitle := fmt.Sprintf("%d of %d categories", len(m.visible), len(m.items)-1)
	content.WriteString(ViewHeaderWithSubtitle("Choose a category", subtitle, m.Layout.InnerWidth))
	content.WriteString(m.filter.View())
	content.WriteString("\n\n")
	content.WriteString(RenderTableWithSelection(m.table, m.Layout))

	return TwoBoxView(content.String(), "type: filter | ↑/↓: navigate | Enter: select | Esc: cancel", m.Layout)
}

// Selected returns the chosen slug and whether one was chosen.
func (m CategoryPickerModel) Selected() (string, bool) {
	return m.selected, m.chosen
}

// RunCategoryPicker shows the picker. ok is false when cancelled.
func RunCategoryPicker(categories []models.Category, current string) (slug string, ok bool, err error) {
	p := tea.NewProgram(NewCategoryPickerModel(categories, current), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", false, fmt.Errorf("category picker error: %w", err)
	}
	slug, ok = final.(CategoryPickerModel).Selected()
	return slug, ok, nil
}
