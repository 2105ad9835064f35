package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Layout constants - single source of truth for all viewport dimensions
const (
	MinViewportWidth  = 80
	MaxViewportWidth  = 140
	DefaultWidth      = 110 // Used when terminal size is unknown
	DefaultHeight     = 30
	MinViewportHeight = 16

	// Rows the list chrome uses around the table: header, filter line,
	// status line, pager, borders and the footer box.
	listChromeHeight = 14
)

// Layout holds computed dimensions for the current terminal size
type Layout struct {
	ViewportWidth  int // clamped terminal width
	ViewportHeight int // terminal height, at least MinViewportHeight
	InnerWidth     int // exact width for content inside borders
	TableWidth     int // sum of column widths + separators
	TableHeight    int // visible data rows
}

// NewLayout creates a Layout from the terminal size, clamping to min/max
func NewLayout(terminalWidth, terminalHeight int) Layout {
	width := clamp(terminalWidth, MinViewportWidth, MaxViewportWidth)
	height := terminalHeight
	if height < MinViewportHeight {
		height = MinViewportHeight
	}
	tableHeight := height - listChromeHeight
	if tableHeight < 3 {
		tableHeight = 3
	}
	return Layout{
		ViewportWidth:  width,
		ViewportHeight: height,
		InnerWidth:     width - 2, // minus border chars
		TableWidth:     width - 4, // minus border + padding
		TableHeight:    tableHeight,
	}
}

// DefaultLayout returns a layout using the default size
func DefaultLayout() Layout {
	return NewLayout(DefaultWidth, DefaultHeight)
}

// clamp restricts a value to the given range
func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Color palette - centralized color definitions
var (
	ColorBorder    = lipgloss.Color("196") // red
	ColorHighlight = lipgloss.Color("88")  // dark red background
	ColorText      = lipgloss.Color("15")  // bright white
	ColorAccent    = lipgloss.Color("226") // bright yellow
	ColorTextDim   = lipgloss.Color("241") // gray
	ColorSuccess   = lipgloss.Color("42")  // green
	ColorFooter    = lipgloss.Color("15")  // footer box border
)

// Common styles - reusable style definitions
var (
	// Border style for main viewport. Content inside uses InnerWidth.
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	FooterStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFooter)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Italic(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	// Filter chips above the table
	ChipActiveStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true).
			Padding(0, 1)

	ChipInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim).
				Padding(0, 1)

	// Label column of detail cards
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Width(18)
)

func RenderTitle(s string) string  { return TitleStyle.Render(s) }
func RenderNormal(s string) string { return NormalStyle.Render(s) }
func RenderDim(s string) string    { return DimStyle.Render(s) }
func RenderError(s string) string  { return ErrorStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }

// RenderSelectedWidth renders s highlighted and padded to width
func RenderSelectedWidth(s string, width int) string {
	s = truncateToWidth(stripEscapeCodes(s), width)
	if w := StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return SelectedStyle.Render(s)
}

// StringWidth is the printable width of s, ignoring ANSI sequences
func StringWidth(s string) int {
	return ansi.StringWidth(s)
}

func stripEscapeCodes(s string) string {
	return ansi.Strip(s)
}

func truncateToWidth(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}

// ApplyTableStyles applies the standard table look. Selection highlight is
// drawn by RenderTableWithSelection, so the table's own Selected style is neutral.
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorText).
		BorderBottom(false).
		Bold(true).
		Foreground(ColorText)
	s.Cell = s.Cell.Foreground(ColorText)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
}

// NewAppSpinner returns the spinner used everywhere in the app
func NewAppSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorText)
	return s
}

// BuildTwoBoxView renders content in the red main box and helpText centered
// in a one-line white footer box below it.
func BuildTwoBoxView(content, helpText string, layout Layout) string {
	mainHeight := layout.ViewportHeight - 6
	if mainHeight < 8 {
		mainHeight = 8
	}
	content = PadContentToHeight(content, mainHeight)

	main := BorderStyle.
		Width(layout.InnerWidth).
		Height(mainHeight).
		Render(content)

	footer := FooterStyle.
		Width(layout.InnerWidth).
		Height(1).
		Render(CenterTextPadded(HintStyle.Render(helpText), layout.InnerWidth))

	return main + "\n" + footer
}

// PadContentToHeight pads content with newlines up to height lines
func PadContentToHeight(content string, height int) string {
	lines := strings.Count(content, "\n") + 1
	if lines < height {
		content += strings.Repeat("\n", height-lines)
	}
	return content
}

// NewAppTheme creates a huh theme matching the app's style guide
// White text, red highlights/selection
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)
	t.Blurred.Title = t.Focused.Title

	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorText)
	t.Blurred.Description = t.Focused.Description

	t.Focused.Base = lipgloss.NewStyle().
		Foreground(ColorText)
	t.Blurred.Base = t.Focused.Base

	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)

	t.Focused.UnselectedOption = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)

	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	t.Focused.ErrorMessage = ErrorStyle
	t.Focused.ErrorIndicator = ErrorStyle

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorBorder)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(ColorBorder)

	return t
}
