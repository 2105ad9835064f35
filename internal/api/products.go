package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/thesavant42/adminboard/internal/models"
)

// ListProducts fetches one page of products
func (c *Client) ListProducts(ctx context.Context, limit, skip int) (*models.ProductsResponse, error) {
	var out models.ProductsResponse
	err := c.do(ctx, request{
		op:     "fetch products",
		method: http.MethodGet,
		path:   "/products",
		query:  pageQuery(limit, skip),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchProducts runs a full-text product search, returning every match
func (c *Client) SearchProducts(ctx context.Context, query string) (*models.ProductsResponse, error) {
	var out models.ProductsResponse
	err := c.do(ctx, request{
		op:     "search products",
		method: http.MethodGet,
		path:   "/products/search",
		query:  url.Values{"q": {query}, "limit": {"0"}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProductsByCategory fetches one page of products in a category
func (c *Client) ListProductsByCategory(ctx context.Context, slug string, limit, skip int) (*models.ProductsResponse, error) {
	var out models.ProductsResponse
	err := c.do(ctx, request{
		op:     "fetch category " + slug,
		method: http.MethodGet,
		path:   "/products/category/" + url.PathEscape(slug),
		query:  pageQuery(limit, skip),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProduct fetches a single product by id
func (c *Client) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var out models.Product
	err := c.do(ctx, request{
		op:     "fetch product",
		method: http.MethodGet,
		path:   fmt.Sprintf("/products/%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories fetches every product category, normalized to slug + name
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, request{
		op:     "fetch categories",
		method: http.MethodGet,
		path:   "/products/categories",
	}, &out)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Name == "" {
			out[i].Name = models.FormatCategoryName(out[i].Slug)
		}
	}
	return out, nil
}
