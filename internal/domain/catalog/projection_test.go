package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectionFixture(t *testing.T) ([]Product, Category, Category) {
	t.Helper()
	storeID := uuid.New()

	catA, err := NewCategory(storeID, "cat-a", "Category A")
	require.NoError(t, err)
	catB, err := NewCategory(storeID, "cat-b", "Category B")
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mk := func(slug string, price int64, cat Category, age time.Duration) Product {
		p, err := NewProduct(storeID, slug, "Product "+slug, decimal.NewFromInt(price), 10)
		require.NoError(t, err)
		p.Categories = []Category{cat}
		p.CreatedAt = base.Add(age)
		return *p
	}

	products := []Product{
		mk("one", 10, *catA, 0),
		mk("two", 30, *catB, time.Hour),
		mk("three", 20, *catA, 2*time.Hour),
	}
	return products, *catA, *catB
}

func TestVisibleFiltering(t *testing.T) {
	products, catA, catB := projectionFixture(t)

	t.Run("nil filter retains all products in catalog order", func(t *testing.T) {
		visible := Visible(products, nil, SortKeyNone)
		require.Len(t, visible, 3)
		assert.Equal(t, "one", visible[0].Slug)
		assert.Equal(t, "two", visible[1].Slug)
		assert.Equal(t, "three", visible[2].Slug)
	})

	t.Run("category filter retains only members", func(t *testing.T) {
		visible := Visible(products, &catA.ID, SortKeyNone)
		require.Len(t, visible, 2)
		assert.Equal(t, "one", visible[0].Slug)
		assert.Equal(t, "three", visible[1].Slug)
	})

	t.Run("filter with no members yields empty list", func(t *testing.T) {
		unknown := uuid.New()
		assert.Empty(t, Visible(products, &unknown, SortKeyNone))
		_ = catB
	})
}

func TestVisibleSorting(t *testing.T) {
	products, catA, _ := projectionFixture(t)

	t.Run("category A by ascending price", func(t *testing.T) {
		visible := Visible(products, &catA.ID, SortKeyPriceAsc)
		require.Len(t, visible, 2)
		assert.Equal(t, "one", visible[0].Slug)
		assert.Equal(t, "three", visible[1].Slug)
	})

	t.Run("descending price over the full catalog", func(t *testing.T) {
		visible := Visible(products, nil, SortKeyPriceDesc)
		require.Len(t, visible, 3)
		assert.Equal(t, "two", visible[0].Slug)
		assert.Equal(t, "three", visible[1].Slug)
		assert.Equal(t, "one", visible[2].Slug)
	})

	t.Run("newest first and oldest first", func(t *testing.T) {
		newest := Visible(products, nil, SortKeyDateNew)
		assert.Equal(t, "three", newest[0].Slug)
		assert.Equal(t, "one", newest[2].Slug)

		oldest := Visible(products, nil, SortKeyDateOld)
		assert.Equal(t, "one", oldest[0].Slug)
		assert.Equal(t, "three", oldest[2].Slug)
	})

	t.Run("stable sort preserves catalog order for equal prices", func(t *testing.T) {
		storeID := uuid.New()
		var equal []Product
		for _, slug := range []string{"first", "second", "third"} {
			p, err := NewProduct(storeID, slug, "Product "+slug, decimal.NewFromInt(15), 5)
			require.NoError(t, err)
			equal = append(equal, *p)
		}

		visible := Visible(equal, nil, SortKeyPriceAsc)
		assert.Equal(t, "first", visible[0].Slug)
		assert.Equal(t, "second", visible[1].Slug)
		assert.Equal(t, "third", visible[2].Slug)
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		before := make([]Product, len(products))
		copy(before, products)

		_ = Visible(products, nil, SortKeyPriceDesc)

		for i := range before {
			assert.Equal(t, before[i].Slug, products[i].Slug)
		}
	})
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortKeyPriceAsc, ParseSortKey("price_asc"))
	assert.Equal(t, SortKeyPriceDesc, ParseSortKey("price_desc"))
	assert.Equal(t, SortKeyDateNew, ParseSortKey("date_new"))
	assert.Equal(t, SortKeyDateOld, ParseSortKey("date_old"))
	assert.Equal(t, SortKeyNone, ParseSortKey(""))
	assert.Equal(t, SortKeyNone, ParseSortKey("price"))
}

func TestSelectedCount(t *testing.T) {
	products, _, _ := projectionFixture(t)

	selected := map[uuid.UUID]bool{
		products[0].ID: true,
		products[2].ID: true,
	}
	assert.Equal(t, 2, SelectedCount(products, selected))
	assert.Equal(t, 0, SelectedCount(products, nil))
}
