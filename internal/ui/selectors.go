package ui

// selectors.go provides the single-column menu used by the dashboard.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// SelectorConfig defines a menu.
type SelectorConfig struct {
	Title    string   // Main title displayed at top
	Subtitle string   // Optional line under the title, e.g. the welcome message
	HelpText string   // Footer help; a default is used when empty
	Items    []string // Display labels for each option
}

// SelectorModel is a single-column table menu.
type SelectorModel struct {
	PageState
	table    table.Model
	config   SelectorConfig
	selected int // -1 if cancelled
}

// NewSelectorModel creates a menu for cfg.
func NewSelectorModel(cfg SelectorConfig) SelectorModel {
	layout := DefaultLayout()

	rows := make([]table.Row, len(cfg.Items))
	for i, item := range cfg.Items {
		rows[i] = table.Row{item}
	}

	if cfg.HelpText == "" {
		cfg.HelpText = "↑/↓: navigate | Enter: select | Esc: quit"
	}

	return SelectorModel{
		PageState: NewPageState(layout),
		table:     InitTable(CalculateColumns(SingleColumnSpec(cfg.Title), layout.TableWidth), rows, layout),
		config:    cfg,
		selected:  -1,
	}
}

func (m SelectorModel) Init() tea.Cmd {
	return StandardInit()
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetColumns(CalculateColumns(SingleColumnSpec(m.config.Title), m.Layout.TableWidth))
			m.table.SetHeight(m.Layout.TableHeight)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			m.selected = m.table.Cursor()
			m.Quitting = true
			return m, tea.Quit
		}
		if quit, cmd := HandleQuitKeys(msg.String()); quit {
			m.selected = -1
			m.Quitting = true
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SelectorModel) View() string {
	if m.Quitting {
		return ""
	}

	var content strings.Builder
	content.WriteString(ViewHeaderWithSubtitle(m.config.Title, m.config.Subtitle, m.Layout.InnerWidth))
	content.WriteString(RenderTableWithSelection(m.table, m.Layout))

	return TwoBoxView(content.String(), m.config.HelpText, m.Layout)
}

// Selected returns the index of the selected item, or -1 if cancelled.
func (m SelectorModel) Selected() int {
	return m.selected
}

// RunSelector runs the menu and returns the selected index, -1 if cancelled.
func RunSelector(cfg SelectorConfig) (int, error) {
	p := tea.NewProgram(NewSelectorModel(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("selector error: %w", err)
	}
	return finalModel.(SelectorModel).Selected(), nil
}
