// Package store persists the catalog: products, stores and the product/store join table.
package store

import (
	"context"

	"github.com/abgdnv/catalog/internal/catalog"
)

// CatalogStore abstracts the underlying data store, allowing for different implementations
// (in-memory, Postgres). Lists are returned in creation order.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)

	// FindProduct returns ErrProductNotFound if no product exists with the given ID.
	FindProduct(ctx context.Context, id catalog.ID) (catalog.Product, error)

	// CreateProduct assigns a new ID to p and stores it.
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)

	// UpdateProduct replaces every field of the product with the given ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	UpdateProduct(ctx context.Context, id catalog.ID, p catalog.Product) (catalog.Product, error)

	// DeleteProduct removes the product and its associations, returning how many
	// associations were removed.
	DeleteProduct(ctx context.Context, id catalog.ID) (int64, error)

	ListStores(ctx context.Context) ([]catalog.Store, error)
	FindStore(ctx context.Context, id catalog.ID) (catalog.Store, error)
	CreateStore(ctx context.Context, s catalog.Store) (catalog.Store, error)
	UpdateStore(ctx context.Context, id catalog.ID, s catalog.Store) (catalog.Store, error)
	DeleteStore(ctx context.Context, id catalog.ID) (int64, error)

	// CreateAssociation links a product and a store. It reports false when the pair already
	// existed. Returns ErrProductNotFound or ErrStoreNotFound for unknown ids.
	CreateAssociation(ctx context.Context, productID, storeID catalog.ID) (bool, error)

	// DeleteAssociation unlinks a product and a store. It reports false when the pair did not exist.
	DeleteAssociation(ctx context.Context, productID, storeID catalog.ID) (bool, error)
}
