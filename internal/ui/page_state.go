package ui

// page_state.go provides state shared by every screen.
// Embed PageState in page models to get layout tracking and quit handling.

// PageState contains common state that all pages need.
type PageState struct {
	Layout   Layout
	Quitting bool
}

// NewPageState creates a new PageState with the given layout.
func NewPageState(layout Layout) PageState {
	return PageState{Layout: layout}
}

// UpdateLayout updates the layout and returns true if it changed.
// Use this in your WindowSizeMsg handler.
func (p *PageState) UpdateLayout(width, height int) bool {
	newLayout := NewLayout(width, height)
	if newLayout != p.Layout {
		p.Layout = newLayout
		return true
	}
	return false
}
