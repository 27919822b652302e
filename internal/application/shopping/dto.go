package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// CartLineResponse represents one cart line item in responses
type CartLineResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ImageURL   string          `json:"image_url"`
	StockLimit int             `json:"stock_limit"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// CartResponse represents the full cart with derived totals
type CartResponse struct {
	Items     []CartLineResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	ItemCount int                `json:"item_count"`
}

// CartTotalsResponse represents only the cart's derived values
type CartTotalsResponse struct {
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
}

// FavoriteResponse represents one favorited product in responses
type FavoriteResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url"`
	Slug        string          `json:"slug,omitempty"`
	FavoritedAt time.Time       `json:"favorited_at"`
}

// FavoritesResponse represents the session's favorites set
type FavoritesResponse struct {
	Items []FavoriteResponse `json:"items"`
	Count int                `json:"count"`
}
