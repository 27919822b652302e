package shopping

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vitrine/backend/internal/domain/catalog"
	"github.com/vitrine/backend/internal/domain/shared"
	"github.com/vitrine/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// cartSession pairs a session's cart with the lock that serializes
// access to it. The cart stays nil until first use.
type cartSession struct {
	mu   sync.Mutex
	cart *shopping.Cart
}

// CartService maintains the cart aggregate of every active session.
// The in-memory aggregate is the source of truth for the session: each
// mutation applies in memory first and is then persisted as a full
// snapshot. A snapshot store failure is logged and swallowed, never
// surfaced to the caller, so the shopper keeps a working cart even when
// the persistence backend is unavailable.
//
// Concurrent requests for the same session (multiple tabs, retried
// POSTs) serialize on a per-session lock held across the mutation, the
// snapshot write and the response read, so every response reflects a
// fully applied mutation.
type CartService struct {
	mu          sync.Mutex
	sessions    map[shopping.SessionKey]*cartSession
	snapshots   shopping.SnapshotStore
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a cart service backed by the given snapshot store
func NewCartService(snapshots shopping.SnapshotStore, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		sessions:    make(map[shopping.SessionKey]*cartSession),
		snapshots:   snapshots,
		productRepo: productRepo,
		logger:      logger.Named("cart"),
	}
}

func (s *CartService) session(key shopping.SessionKey) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &cartSession{}
		s.sessions[key] = sess
	}
	return sess
}

// withCart runs fn against the session's cart while holding its lock,
// restoring the cart from the snapshot store on first access. An absent
// or unreadable snapshot yields an empty cart.
func (s *CartService) withCart(ctx context.Context, key shopping.SessionKey, fn func(cart *shopping.Cart) error) error {
	sess := s.session(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.cart == nil {
		cart := shopping.NewCart()
		snap, found, err := s.snapshots.LoadCart(ctx, key)
		if err != nil {
			s.logger.Warn("Failed to load cart snapshot, starting empty",
				zap.String("key", key.CartKey()),
				zap.Error(err))
		} else if found {
			cart = shopping.CartFromSnapshot(snap)
		}
		sess.cart = cart
	}

	return fn(sess.cart)
}

// persist writes the cart snapshot, logging and swallowing any failure.
// Callers hold the session lock.
func (s *CartService) persist(ctx context.Context, key shopping.SessionKey, cart *shopping.Cart) {
	if err := s.snapshots.SaveCart(ctx, key, cart.Snapshot()); err != nil {
		s.logger.Warn("Failed to persist cart snapshot, in-memory state remains authoritative",
			zap.String("key", key.CartKey()),
			zap.Error(err))
	}
}

// Get returns the current cart contents and derived totals
func (s *CartService) Get(ctx context.Context, key shopping.SessionKey) CartResponse {
	var resp CartResponse
	_ = s.withCart(ctx, key, func(cart *shopping.Cart) error {
		resp = toCartResponse(cart)
		return nil
	})
	return resp
}

// AddItem looks up the product and adds it to the session's cart.
// The stored quantity saturates silently at the product's stock; adding
// an out-of-stock product leaves the cart unchanged.
func (s *CartService) AddItem(ctx context.Context, key shopping.SessionKey, req AddItemRequest) (CartResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, key.StoreID, req.ProductID)
	if err != nil {
		return CartResponse{}, err
	}
	if !product.IsActive() {
		return CartResponse{}, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}

	var resp CartResponse
	err = s.withCart(ctx, key, func(cart *shopping.Cart) error {
		changed := cart.AddItem(shopping.LineItem{
			ProductID:  product.ID,
			Name:       product.Name,
			UnitPrice:  product.Price,
			Quantity:   req.Quantity,
			ImageURL:   product.ImageURL,
			StockLimit: product.Stock,
		})
		if changed {
			s.persist(ctx, key, cart)
		}
		resp = toCartResponse(cart)
		return nil
	})
	return resp, err
}

// UpdateQuantity sets the quantity of a line item, clamped to the stock
// limit. An unknown product ID is a no-op, not an error.
func (s *CartService) UpdateQuantity(ctx context.Context, key shopping.SessionKey, productID uuid.UUID, quantity int) CartResponse {
	var resp CartResponse
	_ = s.withCart(ctx, key, func(cart *shopping.Cart) error {
		if cart.UpdateQuantity(productID, quantity) {
			s.persist(ctx, key, cart)
		}
		resp = toCartResponse(cart)
		return nil
	})
	return resp
}

// RemoveItem deletes a line item. An unknown product ID is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, key shopping.SessionKey, productID uuid.UUID) CartResponse {
	var resp CartResponse
	_ = s.withCart(ctx, key, func(cart *shopping.Cart) error {
		if cart.RemoveItem(productID) {
			s.persist(ctx, key, cart)
		}
		resp = toCartResponse(cart)
		return nil
	})
	return resp
}

// Clear empties the session's cart
func (s *CartService) Clear(ctx context.Context, key shopping.SessionKey) CartResponse {
	var resp CartResponse
	_ = s.withCart(ctx, key, func(cart *shopping.Cart) error {
		if cart.Clear() {
			s.persist(ctx, key, cart)
		}
		resp = toCartResponse(cart)
		return nil
	})
	return resp
}

// Totals returns the cart's derived values without the item list
func (s *CartService) Totals(ctx context.Context, key shopping.SessionKey) CartTotalsResponse {
	var totals CartTotalsResponse
	_ = s.withCart(ctx, key, func(cart *shopping.Cart) error {
		totals = CartTotalsResponse{
			Total:     cart.Total(),
			ItemCount: cart.TotalItemCount(),
			LineCount: cart.Len(),
		}
		return nil
	})
	return totals
}

// Evict drops the in-memory aggregate for a session, forcing the next
// access to restore from the snapshot store. Used when a session ends.
func (s *CartService) Evict(key shopping.SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

func toCartResponse(cart *shopping.Cart) CartResponse {
	items := cart.Items()
	lines := make([]CartLineResponse, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLineResponse{
			ProductID:  item.ProductID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			ImageURL:   item.ImageURL,
			StockLimit: item.StockLimit,
			Subtotal:   item.Subtotal(),
		})
	}
	return CartResponse{
		Items:     lines,
		Total:     cart.Total(),
		ItemCount: cart.TotalItemCount(),
	}
}
