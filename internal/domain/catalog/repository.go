package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/vitrine/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	shared.StoreRepository[Product]
	FindBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*Product, error)
	FindByCategory(ctx context.Context, storeID, categoryID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error)
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	shared.StoreRepository[Category]
	FindBySlug(ctx context.Context, storeID uuid.UUID, slug string) (*Category, error)
}
