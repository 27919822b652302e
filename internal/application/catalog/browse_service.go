package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitrine/backend/internal/domain/catalog"
	"github.com/vitrine/backend/internal/domain/shared"
	"github.com/vitrine/backend/internal/infrastructure/debounce"
	"go.uber.org/zap"
)

// DefaultPageSize bounds listings when the client does not ask for a size
const DefaultPageSize = 24

// MaxPageSize caps the page size a client may request
const MaxPageSize = 100

// DefaultCacheTTL bounds how long a store's cached catalog is served
// without a change notification before it is reloaded
const DefaultCacheTTL = 5 * time.Minute

// BrowseService serves the storefront's read side of the catalog. Each
// store's active products are held in an in-memory cache; change
// notifications arriving in a burst are coalesced through a debouncer so
// the cache reloads once, shortly after the burst settles. Entries also
// carry a TTL so deployments without an invalidation feed still pick up
// catalog changes eventually.
type BrowseService struct {
	products     catalog.ProductRepository
	categories   catalog.CategoryRepository
	logger       *zap.Logger
	refreshDelay time.Duration
	cacheTTL     time.Duration

	mu         sync.RWMutex
	cache      map[uuid.UUID]cacheEntry
	refreshers map[uuid.UUID]*debounce.Debouncer[uuid.UUID]
	closed     bool
}

type cacheEntry struct {
	products []catalog.Product
	loadedAt time.Time
}

// BrowseOption is a functional option for configuring the browse service
type BrowseOption func(*BrowseService)

// WithRefreshDelay sets how long the service waits after the last catalog
// change notification before reloading a store's cache
func WithRefreshDelay(delay time.Duration) BrowseOption {
	return func(s *BrowseService) {
		s.refreshDelay = delay
	}
}

// WithCacheTTL sets how long a cached store catalog stays fresh without
// a reload. A non-positive ttl falls back to DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) BrowseOption {
	return func(s *BrowseService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewBrowseService creates a browse service over the given repositories
func NewBrowseService(products catalog.ProductRepository, categories catalog.CategoryRepository, logger *zap.Logger, opts ...BrowseOption) *BrowseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BrowseService{
		products:     products,
		categories:   categories,
		logger:       logger.Named("catalog.browse"),
		refreshDelay: debounce.DefaultDelay,
		cacheTTL:     DefaultCacheTTL,
		cache:        make(map[uuid.UUID]cacheEntry),
		refreshers:   make(map[uuid.UUID]*debounce.Debouncer[uuid.UUID]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns one page of the store's visible products after
// applying search, category filter and sort order.
func (s *BrowseService) ListProducts(ctx context.Context, storeID uuid.UUID, query ListQuery) (ProductPage, error) {
	products, err := s.storeProducts(ctx, storeID)
	if err != nil {
		return ProductPage{}, err
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		products = searchProducts(products, search)
	}

	visible := catalog.Visible(products, query.CategoryID, catalog.ParseSortKey(query.Sort))

	page, pageSize := normalizePage(query.Page, query.PageSize)
	total := len(visible)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]ProductResponse, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, toProductResponse(&visible[i]))
	}

	return ProductPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetProduct looks a product up by its slug within the store
func (s *BrowseService) GetProduct(ctx context.Context, storeID uuid.UUID, slug string) (ProductResponse, error) {
	product, err := s.products.FindBySlug(ctx, storeID, slug)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

// ListCategories returns every category of the store
func (s *BrowseService) ListCategories(ctx context.Context, storeID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categories.FindAllForStore(ctx, storeID, sharedListFilter())
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, CategoryResponse{
			ID:   categories[i].ID,
			Slug: categories[i].Slug,
			Name: categories[i].Name,
		})
	}
	return out, nil
}

// NotifyChanged records that the store's catalog was modified. Bursts of
// notifications for the same store collapse into a single cache reload.
func (s *BrowseService) NotifyChanged(storeID uuid.UUID) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	refresher, ok := s.refreshers[storeID]
	if !ok {
		refresher = debounce.New(s.refreshDelay, s.reload)
		s.refreshers[storeID] = refresher
	}
	s.mu.Unlock()

	refresher.Trigger(storeID)
}

// Close stops all pending cache refreshes
func (s *BrowseService) Close() {
	s.mu.Lock()
	s.closed = true
	refreshers := make([]*debounce.Debouncer[uuid.UUID], 0, len(s.refreshers))
	for _, r := range s.refreshers {
		refreshers = append(refreshers, r)
	}
	s.refreshers = make(map[uuid.UUID]*debounce.Debouncer[uuid.UUID])
	s.mu.Unlock()

	for _, r := range refreshers {
		r.Stop()
	}
}

// storeProducts returns the store's product list, loading it on first use
// and reloading once a cached entry outlives the TTL. A failed reload of
// an expired entry serves the stale list instead of erroring the request.
func (s *BrowseService) storeProducts(ctx context.Context, storeID uuid.UUID) ([]catalog.Product, error) {
	s.mu.RLock()
	entry, ok := s.cache[storeID]
	s.mu.RUnlock()
	if ok && time.Since(entry.loadedAt) < s.cacheTTL {
		return entry.products, nil
	}

	products, err := s.loadStore(ctx, storeID)
	if err != nil {
		if ok {
			s.logger.Warn("failed to refresh expired catalog cache, serving stale entry",
				zap.String("store_id", storeID.String()),
				zap.Error(err))
			return entry.products, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[storeID] = cacheEntry{products: products, loadedAt: time.Now()}
	s.mu.Unlock()
	return products, nil
}

func (s *BrowseService) loadStore(ctx context.Context, storeID uuid.UUID) ([]catalog.Product, error) {
	all, err := s.products.FindAllForStore(ctx, storeID, sharedListFilter())
	if err != nil {
		return nil, err
	}
	active := make([]catalog.Product, 0, len(all))
	for i := range all {
		if all[i].IsActive() {
			active = append(active, all[i])
		}
	}
	return active, nil
}

// reload runs as the debouncer callback once a notification burst settles
func (s *BrowseService) reload(storeID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products, err := s.loadStore(ctx, storeID)
	if err != nil {
		// Keep serving the stale cache rather than dropping it
		s.logger.Warn("failed to refresh catalog cache",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	if !s.closed {
		s.cache[storeID] = cacheEntry{products: products, loadedAt: time.Now()}
	}
	s.mu.Unlock()

	s.logger.Debug("catalog cache refreshed",
		zap.String("store_id", storeID.String()),
		zap.Int("products", len(products)))
}

// sharedListFilter requests the whole store in one page. Storefront
// catalogs are small enough to hold in memory per store.
func sharedListFilter() shared.Filter {
	f := shared.DefaultFilter()
	f.PageSize = 1000
	f.OrderBy = "sort_order"
	f.OrderDir = "asc"
	return f
}

func searchProducts(products []catalog.Product, search string) []catalog.Product {
	needle := strings.ToLower(search)
	matched := make([]catalog.Product, 0, len(products))
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), needle) ||
			strings.Contains(strings.ToLower(products[i].Description), needle) {
			matched = append(matched, products[i])
		}
	}
	return matched
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Categories:  p.CategoryIDs(),
		CreatedAt:   p.CreatedAt,
	}
}
