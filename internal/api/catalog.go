package api

import (
	"context"
	"net/url"

	"github.com/pizzahouse/storefront/internal/models"
)

type ProductFilter struct {
	Category string
	Search   string
}

func (c *Client) Products(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	path := "/products" + query(map[string]string{
		"category": filter.Category,
		"search":   filter.Search,
	})
	if err := c.get(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := c.get(ctx, "/products/"+id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, "/products/search?query="+url.QueryEscape(q), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) PopularProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, "/products/popular", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) Toppings(ctx context.Context) ([]models.Topping, error) {
	var toppings []models.Topping
	if err := c.get(ctx, "/toppings", &toppings); err != nil {
		return nil, err
	}
	return toppings, nil
}

type ExtraFilter struct {
	Category  string
	ExtraType string
}

func (c *Client) Extras(ctx context.Context, filter ExtraFilter) ([]models.ExtraItem, error) {
	var extras []models.ExtraItem
	path := "/extras" + query(map[string]string{
		"category":  filter.Category,
		"extraType": filter.ExtraType,
	})
	if err := c.get(ctx, path, &extras); err != nil {
		return nil, err
	}
	return extras, nil
}
