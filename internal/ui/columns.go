package ui

// columns.go provides generic column width calculation for bubbles/table.
// Use ColumnSpec and CalculateColumns() instead of hand-tuned widths.

import (
	"github.com/charmbracelet/bubbles/table"
)

// ColumnSpec defines a table column with flexible or fixed width.
// Use FlexRatio for columns that should expand/contract with terminal width.
// Use FixedWidth for columns that should maintain constant width.
type ColumnSpec struct {
	Title      string
	MinWidth   int // Minimum width (0 = no minimum)
	FixedWidth int // If > 0, use this exact width (ignores FlexRatio)
	FlexRatio  int // Relative ratio for flexible columns (0 = fixed-only)
}

// CalculateColumns computes column widths from specs.
// Flexible columns split remaining space by ratio after fixed columns are
// allocated. Each column also costs 2 cells of cell padding in bubbles/table.
//
// Example:
//
//	columns := CalculateColumns([]ColumnSpec{
//	    {Title: "Name", FlexRatio: 30, MinWidth: 20},
//	    {Title: "Email", FlexRatio: 40, MinWidth: 25},
//	    {Title: "Age", FixedWidth: 5},
//	}, layout.TableWidth)
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	totalWidth -= 2 * len(specs)
	if totalWidth < 40 {
		totalWidth = 40
	}

	fixedTotal := 0
	flexTotal := 0
	for _, s := range specs {
		if s.FixedWidth > 0 {
			fixedTotal += s.FixedWidth
		} else {
			flexTotal += s.FlexRatio
		}
	}

	remaining := totalWidth - fixedTotal
	if remaining < 0 {
		remaining = 0
	}

	columns := make([]table.Column, len(specs))
	for i, s := range specs {
		var width int
		if s.FixedWidth > 0 {
			width = s.FixedWidth
		} else if flexTotal > 0 {
			width = remaining * s.FlexRatio / flexTotal
		}

		if s.MinWidth > 0 && width < s.MinWidth {
			width = s.MinWidth
		}

		columns[i] = table.Column{Title: s.Title, Width: width}
	}

	return columns
}

// PeopleColumns returns column specs for the people table.
func PeopleColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "ID", FixedWidth: 5},
		{Title: "Name", FlexRatio: 25, MinWidth: 14},
		{Title: "Username", FlexRatio: 15, MinWidth: 10},
		{Title: "Email", FlexRatio: 35, MinWidth: 18},
		{Title: "Age", FixedWidth: 4},
		{Title: "Company", FlexRatio: 25, MinWidth: 12},
	}
}

// CatalogColumns returns column specs for the catalog table.
func CatalogColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "ID", FixedWidth: 5},
		{Title: "Title", FlexRatio: 40, MinWidth: 18},
		{Title: "Category", FlexRatio: 20, MinWidth: 12},
		{Title: "Brand", FlexRatio: 15, MinWidth: 8},
		{Title: "Price", FixedWidth: 10},
		{Title: "Rating", FixedWidth: 6},
		{Title: "Stock", FixedWidth: 6},
	}
}

// SingleColumnSpec returns a column spec for single-column selectors.
func SingleColumnSpec(title string) []ColumnSpec {
	return []ColumnSpec{
		{Title: title, FlexRatio: 100},
	}
}
