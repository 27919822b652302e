package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	catalogapp "github.com/vitrine/backend/internal/application/catalog"
	shoppingapp "github.com/vitrine/backend/internal/application/shopping"
	"github.com/vitrine/backend/internal/domain/catalog"
	"github.com/vitrine/backend/internal/domain/shared"
	"github.com/vitrine/backend/internal/infrastructure/session"
	"github.com/vitrine/backend/internal/interfaces/http/dto"
	"github.com/vitrine/backend/internal/interfaces/http/middleware"
)

// memProductRepo is an in-memory ProductRepository for handler tests
type memProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) add(p *catalog.Product) {
	r.products[p.ID] = p
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByIDForStore(_ context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok || p.StoreID != storeID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) FindAllForStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindBySlug(_ context.Context, storeID uuid.UUID, slug string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.StoreID == storeID && p.Slug == slug {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByCategory(_ context.Context, storeID, categoryID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.StoreID == storeID && p.HasCategory(categoryID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *memProductRepo) CountForStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

var _ catalog.ProductRepository = (*memProductRepo)(nil)

// memCategoryRepo is an in-memory CategoryRepository for handler tests
type memCategoryRepo struct {
	categories map[uuid.UUID]*catalog.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[uuid.UUID]*catalog.Category)}
}

func (r *memCategoryRepo) add(c *catalog.Category) {
	r.categories[c.ID] = c
}

func (r *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	if c, ok := r.categories[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindByIDForStore(_ context.Context, storeID, id uuid.UUID) (*catalog.Category, error) {
	c, ok := r.categories[id]
	if !ok || c.StoreID != storeID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memCategoryRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCategoryRepo) FindAllForStore(_ context.Context, storeID uuid.UUID, _ shared.Filter) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, c := range r.categories {
		if c.StoreID == storeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) FindBySlug(_ context.Context, storeID uuid.UUID, slug string) (*catalog.Category, error) {
	for _, c := range r.categories {
		if c.StoreID == storeID && c.Slug == slug {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) Save(_ context.Context, c *catalog.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memCategoryRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.categories)), nil
}

var _ catalog.CategoryRepository = (*memCategoryRepo)(nil)

// storefront bundles a fully wired test router and its fixtures
type storefront struct {
	router     *gin.Engine
	storeID    uuid.UUID
	products   *memProductRepo
	categories *memCategoryRepo
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storeID := uuid.New()
	products := newMemProductRepo()
	categories := newMemCategoryRepo()
	snapshots := session.NewMemorySnapshotStore()
	log := zaptest.NewLogger(t)

	cartService := shoppingapp.NewCartService(snapshots, products, log)
	favoritesService := shoppingapp.NewFavoritesService(snapshots, products, log)
	browseService := catalogapp.NewBrowseService(products, categories, log)
	t.Cleanup(browseService.Close)

	cartHandler := NewCartHandler(cartService)
	favoritesHandler := NewFavoritesHandler(favoritesService)
	productHandler := NewProductHandler(browseService)

	router := gin.New()
	router.Use(middleware.StoreResolver(middleware.DefaultStoreHeader, storeID))
	router.Use(middleware.Session(middleware.DefaultSessionHeader))

	api := router.Group("/api/v1")
	api.GET("/cart", cartHandler.Get)
	api.POST("/cart/items", cartHandler.AddItem)
	api.PATCH("/cart/items/:product_id", cartHandler.UpdateQuantity)
	api.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)
	api.DELETE("/cart", cartHandler.Clear)
	api.GET("/cart/totals", cartHandler.Totals)
	api.GET("/favorites", favoritesHandler.Get)
	api.PUT("/favorites/:product_id", favoritesHandler.Toggle)
	api.DELETE("/favorites/:product_id", favoritesHandler.Remove)
	api.DELETE("/favorites", favoritesHandler.Clear)
	api.GET("/products", productHandler.List)
	api.GET("/products/:slug", productHandler.GetBySlug)
	api.GET("/categories", productHandler.ListCategories)

	return &storefront{
		router:     router,
		storeID:    storeID,
		products:   products,
		categories: categories,
	}
}

func (s *storefront) seedProduct(t *testing.T, slug string, price int64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(s.storeID, slug, slug, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	s.products.add(p)
	return p
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
