package ui

// detail.go renders one record as a key/value card.

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thesavant42/adminboard/internal/models"
)

// Field is one row of a detail card
type Field struct {
	Label string
	Value string
}

// Section groups fields under a heading
type Section struct {
	Heading string
	Fields  []Field
}

// Card is a record ready for display. Err replaces the body when the fetch failed.
type Card struct {
	Title    string
	Sections []Section
	Err      string
}

// UserCard builds the detail card for a person.
func UserCard(u models.User) Card {
	return Card{
		Title: fmt.Sprintf("%s (#%d)", u.FullName(), u.ID),
		Sections: []Section{
			{Heading: "Profile", Fields: compact([]Field{
				{"Username", u.Username},
				{"Email", u.Email},
				{"Phone", u.Phone},
				{"Age", strconv.Itoa(u.Age)},
				{"Gender", u.Gender},
				{"Birth date", u.BirthDate},
				{"Role", u.Role},
			})},
			{Heading: "Address", Fields: compact([]Field{
				{"Street", u.Address.Address},
				{"City", joinNonEmpty(", ", u.Address.City, u.Address.StateCode, u.Address.PostalCode)},
				{"Country", u.Address.Country},
			})},
			{Heading: "Work", Fields: compact([]Field{
				{"Company", u.Company.Name},
				{"Department", u.Company.Department},
				{"Title", u.Company.Title},
				{"University", u.University},
			})},
		},
	}
}

// ProductCard builds the detail card for a catalog item.
func ProductCard(p models.Product) Card {
	price := fmt.Sprintf("$%.2f", p.Price)
	if p.DiscountPercentage > 0 {
		price = fmt.Sprintf("$%.2f  (-%.1f%% = $%.2f)", p.Price, p.DiscountPercentage, p.DiscountedPrice())
	}

	return Card{
		Title: fmt.Sprintf("%s (#%d)", p.Title, p.ID),
		Sections: []Section{
			{Heading: "Product", Fields: compact([]Field{
				{"Category", models.FormatCategoryName(p.Category)},
				{"Brand", p.Brand},
				{"SKU", p.SKU},
				{"Price", price},
				{"Rating", fmt.Sprintf("%.2f (%d reviews)", p.Rating, len(p.Reviews))},
				{"Stock", fmt.Sprintf("%d  %s", p.Stock, p.AvailabilityStatus)},
				{"Tags", strings.Join(p.Tags, ", ")},
			})},
			{Heading: "Policies", Fields: compact([]Field{
				{"Warranty", p.WarrantyInformation},
				{"Shipping", p.ShippingInformation},
				{"Returns", p.ReturnPolicy},
			})},
			{Heading: "Description", Fields: []Field{{"", p.Description}}},
		},
	}
}

// compact drops fields without a value
func compact(fields []Field) []Field {
	out := fields[:0]
	for _, f := range fields {
		if strings.TrimSpace(f.Value) != "" {
			out = append(out, f)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// Render lays the card out for width columns.
func (c Card) Render(width int) string {
	var b strings.Builder
	b.WriteString(ViewHeader(c.Title, width))

	if c.Err != "" {
		b.WriteString("\n")
		b.WriteString(RenderError(c.Err))
		return b.String()
	}

	for _, s := range c.Sections {
		if len(s.Fields) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(RenderAccent(s.Heading))
		b.WriteString("\n")
		for _, f := range s.Fields {
			if f.Label == "" {
				b.WriteString(RenderNormal(truncateToWidth(f.Value, width)))
			} else {
				b.WriteString(LabelStyle.Render(f.Label))
				b.WriteString(RenderNormal(truncateToWidth(f.Value, width-18)))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

type detailModel struct {
	PageState
	card Card
}

func (m detailModel) Init() tea.Cmd {
	return StandardInit()
}

func (m detailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.UpdateLayout(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "enter", "backspace", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m detailModel) View() string {
	if m.Quitting {
		return ""
	}
	return TwoBoxView(m.card.Render(m.Layout.InnerWidth), "Esc/Enter: back", m.Layout)
}

// RunDetail shows card until dismissed.
func RunDetail(card Card) error {
	p := tea.NewProgram(detailModel{PageState: NewPageState(DefaultLayout()), card: card}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("detail view error: %w", err)
	}
	return nil
}
