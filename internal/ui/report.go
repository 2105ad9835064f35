package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorText).
				MarginBottom(1)

	reportHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true).
				Padding(0, 1)

	reportCellStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	reportSummaryStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim).
				Italic(true)
)

// Report is a non-interactive listing printed by the CLI subcommands
type Report struct {
	Title   string
	Headers []string
	Rows    [][]string
	Summary string // e.g. "Page 2 of 10 | 100 total"
}

// PrintReport writes r to w as a bordered table.
func PrintReport(w io.Writer, r Report) {
	if r.Title != "" {
		fmt.Fprintln(w, reportTitleStyle.Render(r.Title))
	}

	if len(r.Rows) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No results"))
	} else {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
			Headers(r.Headers...).
			Rows(r.Rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return reportHeaderStyle
				}
				return reportCellStyle
			})
		fmt.Fprintln(w, t.Render())
	}

	if r.Summary != "" {
		fmt.Fprintln(w, reportSummaryStyle.Render(r.Summary))
	}
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(ErrorStyle.Render("Error: " + message))
}
