package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thesavant42/adminboard/internal/collections"
	"github.com/thesavant42/adminboard/internal/listquery"
	"github.com/thesavant42/adminboard/internal/models"
	"github.com/thesavant42/adminboard/internal/ui"
)

type listFlags struct {
	search   string
	category string
	page     int
	limit    int
}

func (f listFlags) intent(defaultLimit int) listquery.Intent {
	in := listquery.NewIntent(defaultLimit)
	if f.limit > 0 {
		in.PageSize = f.limit
	}
	if f.page > 0 {
		in.Page = f.page
	}
	in.SearchText = f.search
	if f.category != "" {
		in.Category = f.category
	}
	return in
}

func addListFlags(cmd *cobra.Command, f *listFlags, categories bool) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search text (returns every match, ignores --page)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "page size (default from config)")
	if categories {
		cmd.Flags().StringVarP(&f.category, "category", "c", "", "category slug, e.g. mens-shirts")
	}
}

func newUsersCmd(opts *rootOptions) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List people",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			return printListing(cmd.Context(), cmd.OutOrStdout(),
				collections.People(a.client), collections.ErrorFormatter("users"),
				flags.intent(a.cfg.Query.PeoplePageSize), ui.PeopleCollection())
		},
	}
	addListFlags(cmd, &flags, false)
	return cmd
}

func newProductsCmd(opts *rootOptions) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			return printListing(cmd.Context(), cmd.OutOrStdout(),
				collections.Catalog(a.client), collections.ErrorFormatter("products"),
				flags.intent(a.cfg.Query.CatalogPageSize), ui.CatalogCollection())
		},
	}
	addListFlags(cmd, &flags, true)
	return cmd
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			categories, err := a.client.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintReport(cmd.OutOrStdout(), categoriesReport(categories))
			return nil
		},
	}
}

func categoriesReport(categories []models.Category) ui.Report {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Slug, c.DisplayName()})
	}
	return ui.Report{
		Title:   "Categories",
		Headers: []string{"Slug", "Name"},
		Rows:    rows,
		Summary: fmt.Sprintf("%d categories", len(categories)),
	}
}

// printListing resolves intent the same way the list views do and fetches
// one page.
func printListing[T any](ctx context.Context, w io.Writer, fetcher listquery.Fetcher[T], formatErr listquery.ErrorFormatter, intent listquery.Intent, coll ui.Collection[T]) error {
	plan := listquery.Resolve(intent)
	res, err := fetcher.Fetch(ctx, plan)
	if err != nil {
		return errors.New(formatErr(plan, err))
	}
	ui.PrintReport(w, listingReport(coll, plan, intent, res))
	return nil
}

func listingReport[T any](coll ui.Collection[T], plan listquery.Plan, intent listquery.Intent, res listquery.Result[T]) ui.Report {
	headers := make([]string, len(coll.Columns))
	for i, c := range coll.Columns {
		headers[i] = c.Title
	}

	rows := make([][]string, 0, len(res.Items))
	for _, item := range res.Items {
		rows = append(rows, coll.Row(item))
	}

	title := coll.Title
	switch plan.Kind {
	case listquery.PlanSearch:
		title = fmt.Sprintf("%s matching %q", coll.Title, plan.Query)
	case listquery.PlanListByCategory:
		title = fmt.Sprintf("%s in %s", coll.Title, models.FormatCategoryName(plan.Category))
	}

	var summary string
	if plan.Kind == listquery.PlanSearch {
		summary = fmt.Sprintf("%d matches", res.Total)
	} else {
		totalPages := listquery.TotalPages(res.Total, intent.PageSize)
		summary = fmt.Sprintf("Page %d of %d | %d total", intent.Page, totalPages, res.Total)
		if intent.Page > totalPages {
			summary += fmt.Sprintf(" (past the last page, try --page %d)", totalPages)
		}
	}

	return ui.Report{Title: title, Headers: headers, Rows: rows, Summary: summary}
}
