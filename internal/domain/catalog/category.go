package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitrine/backend/internal/domain/shared"
)

// Category groups products for storefront navigation
type Category struct {
	shared.StoreAggregateRoot
	Slug      string `gorm:"type:varchar(120);not null;index"`
	Name      string `gorm:"type:varchar(100);not null"`
	SortOrder int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category for a store
func NewCategory(storeID uuid.UUID, slug, name string) (*Category, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}

	return &Category{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Slug:               strings.ToLower(slug),
		Name:               name,
	}, nil
}

// Rename changes the category display name
func (c *Category) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
