package ui

// view_helpers.go provides common View() rendering helpers.
// Use these to build consistent two-box layouts across all TUI models.

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
)

// RenderTableWithSelection renders a bubbles table with full-width selection highlight.
//
// bubbles/table View() output is the header row on line 0 followed by the
// visible data rows. We add our own divider under the header and compute the
// visible cursor row from the table's scroll position.
func RenderTableWithSelection(t table.Model, layout Layout) string {
	lines := strings.Split(t.View(), "\n")
	result := make([]string, 0, len(lines)+1)

	cursor := t.Cursor()
	height := t.Height()
	totalRows := len(t.Rows())

	// Mirror the table's viewport: the cursor row stays at the bottom edge
	// once it scrolls past the first screen.
	start := 0
	if totalRows > height {
		if cursor >= height {
			start = cursor - height + 1
		}
		if maxStart := totalRows - height; start > maxStart {
			start = maxStart
		}
	}
	visibleCursorIndex := cursor - start

	for i, line := range lines {
		if i == 0 {
			result = append(result, NormalStyle.Render(line))
			result = append(result, FullWidthDivider(layout.InnerWidth))
			continue
		}

		if totalRows > 0 && i-1 == visibleCursorIndex {
			result = append(result, RenderSelectedWidth(line, layout.InnerWidth))
			continue
		}

		result = append(result, NormalStyle.Render(line))
	}

	return strings.Join(result, "\n")
}

// ViewHeader renders title + full-width divider + spacing.
func ViewHeader(title string, innerWidth int) string {
	return ViewHeaderWithSubtitle(title, "", innerWidth)
}

// ViewHeaderWithSubtitle renders title + subtitle + divider + spacing.
func ViewHeaderWithSubtitle(title, subtitle string, innerWidth int) string {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	if subtitle != "" {
		b.WriteString(RenderDim(subtitle))
		b.WriteString("\n")
	}
	b.WriteString(FullWidthDivider(innerWidth))
	b.WriteString("\n")
	return b.String()
}

// CenterTextPadded centers text and pads to full width.
func CenterTextPadded(text string, width int) string {
	textW := StringWidth(text)
	if textW >= width {
		return text
	}
	leftPad := (width - textW) / 2
	rightPad := width - textW - leftPad
	return strings.Repeat(" ", leftPad) + text + strings.Repeat(" ", rightPad)
}

// TwoBoxView constructs the standard two-box layout.
//
//	┌────────────────────────┐
//	│ Main content           │  <- Red border
//	└────────────────────────┘
//	┌────────────────────────┐
//	│   Centered help text   │  <- White border, 1 row
//	└────────────────────────┘
func TwoBoxView(content, helpText string, layout Layout) string {
	return BuildTwoBoxView(content, helpText, layout)
}

// FullWidthDivider returns a horizontal divider spanning the inner width.
func FullWidthDivider(innerWidth int) string {
	return strings.Repeat("─", innerWidth)
}
