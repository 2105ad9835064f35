// Package collections binds the remote people and catalog endpoints to the
// list query layer.
package collections

import (
	"context"
	"errors"
	"fmt"

	"github.com/thesavant42/adminboard/internal/api"
	"github.com/thesavant42/adminboard/internal/listquery"
	"github.com/thesavant42/adminboard/internal/models"
)

// ErrCategoryUnsupported is returned when a category plan reaches a
// collection that has no categories.
var ErrCategoryUnsupported = errors.New("collection does not support categories")

// UserSource is the part of the API client the people collection uses
type UserSource interface {
	ListUsers(ctx context.Context, limit, skip int) (*models.UsersResponse, error)
	SearchUsers(ctx context.Context, query string) (*models.UsersResponse, error)
}

// ProductSource is the part of the API client the catalog collection uses
type ProductSource interface {
	ListProducts(ctx context.Context, limit, skip int) (*models.ProductsResponse, error)
	SearchProducts(ctx context.Context, query string) (*models.ProductsResponse, error)
	ListProductsByCategory(ctx context.Context, slug string, limit, skip int) (*models.ProductsResponse, error)
}

// People returns a fetcher for people records
func People(src UserSource) listquery.Fetcher[models.User] {
	return listquery.FetcherFunc[models.User](func(ctx context.Context, plan listquery.Plan) (listquery.Result[models.User], error) {
		var (
			resp *models.UsersResponse
			err  error
		)
		switch plan.Kind {
		case listquery.PlanSearch:
			resp, err = src.SearchUsers(ctx, plan.Query)
		case listquery.PlanListByCategory:
			return listquery.Result[models.User]{}, ErrCategoryUnsupported
		default:
			resp, err = src.ListUsers(ctx, plan.Limit, plan.Skip)
		}
		if err != nil {
			return listquery.Result[models.User]{}, err
		}
		return listquery.Result[models.User]{Items: resp.Users, Total: resp.Total}, nil
	})
}

// Catalog returns a fetcher for catalog records
func Catalog(src ProductSource) listquery.Fetcher[models.Product] {
	return listquery.FetcherFunc[models.Product](func(ctx context.Context, plan listquery.Plan) (listquery.Result[models.Product], error) {
		var (
			resp *models.ProductsResponse
			err  error
		)
		switch plan.Kind {
		case listquery.PlanSearch:
			resp, err = src.SearchProducts(ctx, plan.Query)
		case listquery.PlanListByCategory:
			resp, err = src.ListProductsByCategory(ctx, plan.Category, plan.Limit, plan.Skip)
		default:
			resp, err = src.ListProducts(ctx, plan.Limit, plan.Skip)
		}
		if err != nil {
			return listquery.Result[models.Product]{}, err
		}
		return listquery.Result[models.Product]{Items: resp.Products, Total: resp.Total}, nil
	})
}

// ErrorFormatter builds the user-facing message for a failed fetch of noun
// ("users", "products").
func ErrorFormatter(noun string) listquery.ErrorFormatter {
	return func(plan listquery.Plan, err error) string {
		reason := api.Describe(err)
		switch plan.Kind {
		case listquery.PlanSearch:
			return fmt.Sprintf("Failed to search %s for %q: %s", noun, plan.Query, reason)
		case listquery.PlanListByCategory:
			return fmt.Sprintf("Failed to fetch %s in %s: %s", noun, models.FormatCategoryName(plan.Category), reason)
		default:
			return fmt.Sprintf("Failed to fetch %s: %s", noun, reason)
		}
	}
}
