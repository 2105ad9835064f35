package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// splashDuration is how long the banner stays up unless a key is pressed
const splashDuration = 1500 * time.Millisecond

// SplashModel is the startup banner
type SplashModel struct {
	layout  Layout
	title   string
	caption string
	done    bool
}

type splashTimeoutMsg struct{}

func (m SplashModel) Init() tea.Cmd {
	return tea.Tick(splashDuration, func(time.Time) tea.Msg {
		return splashTimeoutMsg{}
	})
}

func (m SplashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg, splashTimeoutMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SplashModel) View() string {
	if m.done {
		return ""
	}

	height := m.layout.ViewportHeight - 4
	if height < 10 {
		height = 10
	}

	lines := make([]string, height)
	mid := height / 2
	lines[mid-1] = CenterTextPadded(RenderTitle(m.title), m.layout.InnerWidth)
	lines[mid+1] = CenterTextPadded(RenderDim(m.caption), m.layout.InnerWidth)

	return BorderStyle.
		Width(m.layout.InnerWidth).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

// ShowSplash displays the banner with caption (the service being managed)
// for a moment before the login form.
func ShowSplash(caption string) error {
	model := SplashModel{
		layout:  DefaultLayout(),
		title:   "adminboard",
		caption: caption,
	}
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
