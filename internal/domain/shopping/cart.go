package shopping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a single product entry in a cart.
// Quantity is kept within [1, StockLimit] by every cart mutation.
type LineItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	ImageURL   string          `json:"image_url"`
	StockLimit int             `json:"stock_limit"`
}

// Subtotal returns unit price times quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// clampQuantity constrains a requested quantity to [1, limit].
// The upper bound wins when the range is empty (limit < 1).
func clampQuantity(quantity, limit int) int {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > limit {
		quantity = limit
	}
	return quantity
}

// Cart is the session-scoped aggregate of selected products.
// Items keep insertion order and are keyed by product ID.
// Over-limit requests saturate silently at the stock limit; mutations
// on unknown product IDs are no-ops. No operation returns an error.
type Cart struct {
	items []LineItem
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{items: make([]LineItem, 0)}
}

// indexOf returns the position of the item with the given product ID, or -1
func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem inserts a new line item or merges quantities into an existing one.
// The resulting quantity is clamped to the item's stock limit. Adding a
// product with no stock headroom is a no-op. Returns true if the cart changed.
func (c *Cart) AddItem(item LineItem) bool {
	if item.StockLimit < 1 {
		return false
	}

	if i := c.indexOf(item.ProductID); i >= 0 {
		existing := &c.items[i]
		merged := clampQuantity(existing.Quantity+item.Quantity, existing.StockLimit)
		if merged == existing.Quantity {
			return false
		}
		existing.Quantity = merged
		return true
	}

	item.Quantity = clampQuantity(item.Quantity, item.StockLimit)
	c.items = append(c.items, item)
	return true
}

// UpdateQuantity sets the quantity of an existing line item, clamped to
// [1, stock limit]. Unknown product IDs are a no-op. Returns true if the
// cart changed.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}

	clamped := clampQuantity(quantity, c.items[i].StockLimit)
	if clamped == c.items[i].Quantity {
		return false
	}
	c.items[i].Quantity = clamped
	return true
}

// RemoveItem deletes a line item if present. Returns true if the cart changed.
func (c *Cart) RemoveItem(productID uuid.UUID) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Clear empties the cart. Returns true if the cart changed.
func (c *Cart) Clear() bool {
	if len(c.items) == 0 {
		return false
	}
	c.items = c.items[:0]
	return true
}

// Total returns the sum of unit price times quantity over all items
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalItemCount returns the sum of quantities over all items
func (c *Cart) TotalItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of distinct line items
func (c *Cart) Len() int {
	return len(c.items)
}

// Contains reports whether the cart holds the given product
func (c *Cart) Contains(productID uuid.UUID) bool {
	return c.indexOf(productID) >= 0
}
