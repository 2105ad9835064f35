package listquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   Plan
	}{
		{
			name:   "default list",
			intent: Intent{SearchText: "", Category: AllCategories, Page: 1, PageSize: 10},
			want:   Plan{Kind: PlanListAll, Skip: 0, Limit: 10},
		},
		{
			name:   "search ignores page",
			intent: Intent{SearchText: "phone", Category: AllCategories, Page: 3, PageSize: 10},
			want:   Plan{Kind: PlanSearch, Query: "phone"},
		},
		{
			name:   "search wins over category",
			intent: Intent{SearchText: "phone", Category: "smartphones", Page: 2, PageSize: 12},
			want:   Plan{Kind: PlanSearch, Query: "phone"},
		},
		{
			name:   "search text is trimmed",
			intent: Intent{SearchText: "  lap top ", Category: AllCategories, Page: 1, PageSize: 10},
			want:   Plan{Kind: PlanSearch, Query: "lap top"},
		},
		{
			name:   "whitespace search falls through to category",
			intent: Intent{SearchText: "   ", Category: "beauty", Page: 2, PageSize: 12},
			want:   Plan{Kind: PlanListByCategory, Category: "beauty", Skip: 12, Limit: 12},
		},
		{
			name:   "category page three",
			intent: Intent{Category: "groceries", Page: 3, PageSize: 10},
			want:   Plan{Kind: PlanListByCategory, Category: "groceries", Skip: 20, Limit: 10},
		},
		{
			name:   "empty category means all",
			intent: Intent{Category: "", Page: 2, PageSize: 5},
			want:   Plan{Kind: PlanListAll, Skip: 5, Limit: 5},
		},
		{
			name:   "page below one",
			intent: Intent{Category: AllCategories, Page: 0, PageSize: 10},
			want:   Plan{Kind: PlanListAll, Skip: 0, Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.intent)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIsExclusive(t *testing.T) {
	intents := []Intent{
		{SearchText: "x", Category: "beauty", Page: 4, PageSize: 10},
		{Category: "beauty", Page: 4, PageSize: 10},
		{Category: AllCategories, Page: 4, PageSize: 10},
	}
	want := []Mode{ModeSearch, ModeCategory, ModeDefault}

	for i, in := range intents {
		assert.Equal(t, want[i], Resolve(in).Mode(), "intent %+v", in)
	}
}

func TestPlanEquality(t *testing.T) {
	a := Resolve(Intent{SearchText: "phone", Page: 1, PageSize: 10})
	b := Resolve(Intent{SearchText: " phone ", Category: "beauty", Page: 5, PageSize: 20})
	assert.True(t, a == b, "search plans for the same text should be equal")

	c := Resolve(Intent{Category: AllCategories, Page: 2, PageSize: 10})
	d := Resolve(Intent{Category: AllCategories, Page: 3, PageSize: 10})
	assert.False(t, c == d)
}
