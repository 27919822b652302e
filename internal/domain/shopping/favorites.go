package shopping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Favorite is a product a shopper has marked for later
type Favorite struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageURL    string          `json:"image_url"`
	Slug        string          `json:"slug,omitempty"`
	FavoritedAt time.Time       `json:"favorited_at"`
}

// Favorites is the session-scoped set of favorited products, keyed by
// product ID with at most one entry per product. Adding is idempotent
// and removal of an unknown product is a no-op.
type Favorites struct {
	items []Favorite
}

// NewFavorites creates an empty favorites set
func NewFavorites() *Favorites {
	return &Favorites{items: make([]Favorite, 0)}
}

// indexOf returns the position of the favorite for the given product, or -1
func (f *Favorites) indexOf(productID uuid.UUID) int {
	for i := range f.items {
		if f.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add inserts a favorite if not already present. The favorited-at
// timestamp is set on first insertion. Returns true if the set changed.
func (f *Favorites) Add(item Favorite) bool {
	if f.indexOf(item.ProductID) >= 0 {
		return false
	}
	if item.FavoritedAt.IsZero() {
		item.FavoritedAt = time.Now()
	}
	f.items = append(f.items, item)
	return true
}

// Remove deletes a favorite if present. Returns true if the set changed.
func (f *Favorites) Remove(productID uuid.UUID) bool {
	i := f.indexOf(productID)
	if i < 0 {
		return false
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return true
}

// IsFavorite reports membership for the given product
func (f *Favorites) IsFavorite(productID uuid.UUID) bool {
	return f.indexOf(productID) >= 0
}

// Toggle removes the item when present, adds it otherwise.
// Applied twice with the same item it returns the set to its original
// membership state. Returns true if the item is a favorite afterwards.
func (f *Favorites) Toggle(item Favorite) bool {
	if f.Remove(item.ProductID) {
		return false
	}
	f.Add(item)
	return true
}

// Clear empties the set. Returns true if the set changed.
func (f *Favorites) Clear() bool {
	if len(f.items) == 0 {
		return false
	}
	f.items = f.items[:0]
	return true
}

// Count returns the number of favorites
func (f *Favorites) Count() int {
	return len(f.items)
}

// Items returns a copy of the favorites in insertion order
func (f *Favorites) Items() []Favorite {
	items := make([]Favorite, len(f.items))
	copy(items, f.items)
	return items
}
