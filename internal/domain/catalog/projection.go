package catalog

import (
	"sort"

	"github.com/google/uuid"
)

// SortKey selects the comparator used to order a visible product list
type SortKey string

const (
	SortKeyNone      SortKey = "none"
	SortKeyPriceAsc  SortKey = "price_asc"
	SortKeyPriceDesc SortKey = "price_desc"
	SortKeyDateNew   SortKey = "date_new"
	SortKeyDateOld   SortKey = "date_old"
)

// ParseSortKey normalizes a raw sort key, falling back to SortKeyNone
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortKeyPriceAsc, SortKeyPriceDesc, SortKeyDateNew, SortKeyDateOld:
		return SortKey(raw)
	default:
		return SortKeyNone
	}
}

// Visible derives the displayable product list from a source catalog,
// an optional category filter, and a sort key. The transform is pure:
// the input slice is never mutated and catalog order is preserved for
// products the comparator considers equal (stable sort). A nil category
// filter retains all products; SortKeyNone preserves catalog order.
func Visible(products []Product, categoryFilter *uuid.UUID, key SortKey) []Product {
	visible := make([]Product, 0, len(products))
	for _, p := range products {
		if categoryFilter != nil && !p.HasCategory(*categoryFilter) {
			continue
		}
		visible = append(visible, p)
	}

	switch key {
	case SortKeyPriceAsc:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].Price.LessThan(visible[j].Price)
		})
	case SortKeyPriceDesc:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].Price.GreaterThan(visible[j].Price)
		})
	case SortKeyDateNew:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].CreatedAt.After(visible[j].CreatedAt)
		})
	case SortKeyDateOld:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].CreatedAt.Before(visible[j].CreatedAt)
		})
	}

	return visible
}

// SelectedCount returns how many of the given products are marked selected.
// It is a derived value recomputed on every call, never cached.
func SelectedCount(products []Product, selected map[uuid.UUID]bool) int {
	count := 0
	for _, p := range products {
		if selected[p.ID] {
			count++
		}
	}
	return count
}
