package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrine/backend/internal/domain/catalog"
	"github.com/vitrine/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type fakeCatalogRepo struct {
	mu         sync.Mutex
	products   []catalog.Product
	categories []catalog.Category
	listCalls  int
	listErr    error
}

func (r *fakeCatalogRepo) setProducts(products []catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
}

func (r *fakeCatalogRepo) failLists(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

func (r *fakeCatalogRepo) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

func (r *fakeCatalogRepo) FindAllForStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]catalog.Product, 0, len(r.products))
	for i := range r.products {
		if r.products[i].StoreID == storeID {
			out = append(out, r.products[i])
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindBySlug(_ context.Context, storeID uuid.UUID, slug string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].StoreID == storeID && r.products[i].Slug == slug {
			return &r.products[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCatalogRepo) FindByID(_ context.Context, _ uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCatalogRepo) FindByIDForStore(_ context.Context, _, _ uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCatalogRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) FindByCategory(_ context.Context, _, _ uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) Save(_ context.Context, _ *catalog.Product) error { return nil }

func (r *fakeCatalogRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeCatalogRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

func (r *fakeCatalogRepo) CountForStore(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

type fakeCategoryRepo struct {
	categories []catalog.Category
}

func (r *fakeCategoryRepo) FindAllForStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(r.categories))
	for i := range r.categories {
		if r.categories[i].StoreID == storeID {
			out = append(out, r.categories[i])
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindBySlug(_ context.Context, _ uuid.UUID, _ string) (*catalog.Category, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, _ uuid.UUID) (*catalog.Category, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindByIDForStore(_ context.Context, _, _ uuid.UUID) (*catalog.Category, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) Save(_ context.Context, _ *catalog.Category) error { return nil }

func (r *fakeCategoryRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeCategoryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

func newTestProduct(t *testing.T, storeID uuid.UUID, slug string, price int64, categories ...catalog.Category) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(storeID, slug, "Product "+slug, decimal.NewFromInt(price), 10)
	require.NoError(t, err)
	if len(categories) > 0 {
		p.SetCategories(categories)
	}
	return *p
}

func TestBrowseServiceListProducts(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	catA, err := catalog.NewCategory(storeID, "canecas", "Canecas")
	require.NoError(t, err)
	catB, err := catalog.NewCategory(storeID, "camisetas", "Camisetas")
	require.NoError(t, err)

	one := newTestProduct(t, storeID, "one", 10, *catA)
	two := newTestProduct(t, storeID, "two", 30, *catB)
	three := newTestProduct(t, storeID, "three", 20, *catA)

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{one, two, three})

	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop())
	defer svc.Close()

	t.Run("category filter with price sort", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, storeID, ListQuery{CategoryID: &catA.ID, Sort: "price_asc"})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "one", page.Items[0].Slug)
		assert.Equal(t, "three", page.Items[1].Slug)
		assert.Equal(t, 2, page.Total)
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, storeID, ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
	})

	t.Run("search matches product names", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, storeID, ListQuery{Search: "THREE"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "three", page.Items[0].Slug)
	})

	t.Run("pagination slices the listing", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, storeID, ListQuery{Sort: "price_asc", Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "two", page.Items[0].Slug)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Page)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, storeID, ListQuery{Page: 9, PageSize: 50})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("other stores are invisible", func(t *testing.T) {
		page, err := svc.ListProducts(ctx, uuid.New(), ListQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
}

func TestBrowseServiceHidesInactiveProducts(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	visible := newTestProduct(t, storeID, "ativo", 10)
	hidden := newTestProduct(t, storeID, "oculto", 20)
	require.NoError(t, hidden.Deactivate())

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{visible, hidden})

	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop())
	defer svc.Close()

	page, err := svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ativo", page.Items[0].Slug)
}

func TestBrowseServiceGetProduct(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	product := newTestProduct(t, storeID, "caneca-azul", 25)

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{product})

	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop())
	defer svc.Close()

	t.Run("found by slug", func(t *testing.T) {
		resp, err := svc.GetProduct(ctx, storeID, "caneca-azul")
		require.NoError(t, err)
		assert.Equal(t, product.ID, resp.ID)
		assert.True(t, resp.Price.Equal(decimal.NewFromInt(25)))
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := svc.GetProduct(ctx, storeID, "inexistente")
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestBrowseServiceListCategories(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	cat, err := catalog.NewCategory(storeID, "acessorios", "Acessórios")
	require.NoError(t, err)

	svc := NewBrowseService(&fakeCatalogRepo{}, &fakeCategoryRepo{categories: []catalog.Category{*cat}}, zap.NewNop())
	defer svc.Close()

	out, err := svc.ListCategories(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "acessorios", out[0].Slug)
}

func TestBrowseServiceCoalescesRefreshes(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{newTestProduct(t, storeID, "antigo", 10)})

	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop(), WithRefreshDelay(50*time.Millisecond))
	defer svc.Close()

	// Prime the cache
	page, err := svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	loadsBefore := repo.listCount()

	// The catalog changes underneath, followed by a burst of notifications
	repo.setProducts([]catalog.Product{
		newTestProduct(t, storeID, "antigo", 10),
		newTestProduct(t, storeID, "novo", 20),
	})
	for i := 0; i < 5; i++ {
		svc.NotifyChanged(storeID)
		time.Sleep(5 * time.Millisecond)
	}

	// Until the burst settles the stale cache keeps serving
	page, err = svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	assert.Eventually(t, func() bool {
		p, err := svc.ListProducts(ctx, storeID, ListQuery{})
		return err == nil && len(p.Items) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, loadsBefore+1, repo.listCount())
}

func TestBrowseServiceCacheExpiresWithoutNotifications(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{newTestProduct(t, storeID, "antigo", 10)})

	// No invalidation feed in this setup: the TTL alone has to pick up
	// catalog changes.
	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop(), WithCacheTTL(30*time.Millisecond))
	defer svc.Close()

	page, err := svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	repo.setProducts([]catalog.Product{
		newTestProduct(t, storeID, "antigo", 10),
		newTestProduct(t, storeID, "novo", 20),
	})

	// Still fresh: the stale entry keeps serving without another load
	page, err = svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, repo.listCount())

	time.Sleep(50 * time.Millisecond)

	page, err = svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, repo.listCount())
}

func TestBrowseServiceServesStaleCacheWhenReloadFails(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{newTestProduct(t, storeID, "sobrevivente", 10)})

	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop(), WithCacheTTL(20*time.Millisecond))
	defer svc.Close()

	page, err := svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	repo.failLists(errors.New("connection refused"))
	time.Sleep(40 * time.Millisecond)

	// The expired entry outlives a failed reload
	page, err = svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "sobrevivente", page.Items[0].Slug)
}

func TestBrowseServiceCloseStopsPendingRefresh(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()

	repo := &fakeCatalogRepo{}
	repo.setProducts([]catalog.Product{newTestProduct(t, storeID, "unico", 10)})

	svc := NewBrowseService(repo, &fakeCategoryRepo{}, zap.NewNop(), WithRefreshDelay(30*time.Millisecond))

	_, err := svc.ListProducts(ctx, storeID, ListQuery{})
	require.NoError(t, err)
	loads := repo.listCount()

	svc.NotifyChanged(storeID)
	svc.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, loads, repo.listCount())
}
