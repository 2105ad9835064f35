package listquery

import (
	"fmt"
	"strings"
)

// AllCategories is the category value meaning "no category filter".
const AllCategories = "all"

// Intent is the user's currently-desired query: search text, category and
// page. It is an immutable snapshot built on every edit.
type Intent struct {
	SearchText string
	Category   string
	Page       int
	PageSize   int
}

// NewIntent returns the default intent: no search, all categories, page 1.
func NewIntent(pageSize int) Intent {
	return Intent{
		Category: AllCategories,
		Page:     1,
		PageSize: pageSize,
	}
}

// Mode identifies which filter is authoritative for an intent.
type Mode int

const (
	ModeDefault Mode = iota
	ModeCategory
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeCategory:
		return "category"
	default:
		return "default"
	}
}

// PlanKind is the remote operation a Plan performs.
type PlanKind int

const (
	PlanListAll PlanKind = iota
	PlanListByCategory
	PlanSearch
)

func (k PlanKind) String() string {
	switch k {
	case PlanSearch:
		return "search"
	case PlanListByCategory:
		return "list-by-category"
	default:
		return "list-all"
	}
}

// Plan is the single authoritative fetch derived from an Intent.
// Plans are comparable; equal plans describe the same remote call.
type Plan struct {
	Kind     PlanKind
	Query    string // PlanSearch only
	Category string // PlanListByCategory only
	Skip     int
	Limit    int
}

// Mode returns the intent mode this plan was resolved from.
func (p Plan) Mode() Mode {
	switch p.Kind {
	case PlanSearch:
		return ModeSearch
	case PlanListByCategory:
		return ModeCategory
	default:
		return ModeDefault
	}
}

func (p Plan) String() string {
	switch p.Kind {
	case PlanSearch:
		return fmt.Sprintf("search q=%q", p.Query)
	case PlanListByCategory:
		return fmt.Sprintf("category=%s skip=%d limit=%d", p.Category, p.Skip, p.Limit)
	default:
		return fmt.Sprintf("all skip=%d limit=%d", p.Skip, p.Limit)
	}
}

// Resolve maps an intent to its fetch plan. First match wins:
// non-blank search text, then a category other than AllCategories, then the
// unfiltered list. Search plans ignore category and page.
func Resolve(in Intent) Plan {
	if q := strings.TrimSpace(in.SearchText); q != "" {
		return Plan{Kind: PlanSearch, Query: q}
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = 1
	}
	skip := (page - 1) * size

	if in.Category != "" && in.Category != AllCategories {
		return Plan{Kind: PlanListByCategory, Category: in.Category, Skip: skip, Limit: size}
	}
	return Plan{Kind: PlanListAll, Skip: skip, Limit: size}
}
