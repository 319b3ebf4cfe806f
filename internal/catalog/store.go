package catalog

import (
	"context"
	"errors"

	"ProductDesk/internal/product"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrExists   = errors.New("product already exists")
)

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]product.Product, error)
	Get(ctx context.Context, id string) (product.Product, bool, error)
	Create(ctx context.Context, p product.Product) error
	// Update replaces the editable fields; rating is left as stored.
	Update(ctx context.Context, p product.Product) (product.Product, error)
	Delete(ctx context.Context, id string) (product.Product, error)
}

// seed is the catalog a fresh memory store starts with.
func seed() []product.Product {
	return []product.Product{
		{ID: "p1", Title: "Mechanical Keyboard", Price: 49.9, Category: "electronics", Description: "Tenkeyless, brown switches", Rating: 4.4, RatingCount: 120, Availability: product.InStock},
		{ID: "p2", Title: "Wireless Mouse", Price: 19.9, Category: "electronics", Rating: 3.9, RatingCount: 48, Availability: product.InStock},
		{ID: "p3", Title: "Silver Ring", Price: 89, Category: "jewelery", Availability: product.OutOfStock},
		{ID: "p4", Title: "Cotton Shirt", Price: 22.3, Category: "men's clothing", Rating: 4.1, RatingCount: 259, Availability: product.InStock},
	}
}
