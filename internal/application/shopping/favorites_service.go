package shopping

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vitrine/backend/internal/domain/catalog"
	"github.com/vitrine/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// favoritesSession pairs a session's favorites with the lock that
// serializes access to it
type favoritesSession struct {
	mu  sync.Mutex
	set *shopping.Favorites
}

// FavoritesService maintains the favorites aggregate of every active
// session under the same persistence contract as CartService: memory
// first, snapshot persisted per completed state transition, store
// failures logged and swallowed. Requests for one session serialize on
// a per-session lock held across mutation, persist and response read.
type FavoritesService struct {
	mu          sync.Mutex
	sessions    map[shopping.SessionKey]*favoritesSession
	snapshots   shopping.SnapshotStore
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewFavoritesService creates a favorites service backed by the given snapshot store
func NewFavoritesService(snapshots shopping.SnapshotStore, productRepo catalog.ProductRepository, logger *zap.Logger) *FavoritesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoritesService{
		sessions:    make(map[shopping.SessionKey]*favoritesSession),
		snapshots:   snapshots,
		productRepo: productRepo,
		logger:      logger.Named("favorites"),
	}
}

func (s *FavoritesService) session(key shopping.SessionKey) *favoritesSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &favoritesSession{}
		s.sessions[key] = sess
	}
	return sess
}

// withFavorites runs fn against the session's favorites while holding
// its lock, restoring the set from the snapshot store on first access
func (s *FavoritesService) withFavorites(ctx context.Context, key shopping.SessionKey, fn func(set *shopping.Favorites) error) error {
	sess := s.session(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.set == nil {
		set := shopping.NewFavorites()
		snap, found, err := s.snapshots.LoadFavorites(ctx, key)
		if err != nil {
			s.logger.Warn("Failed to load favorites snapshot, starting empty",
				zap.String("key", key.FavoritesKey()),
				zap.Error(err))
		} else if found {
			set = shopping.FavoritesFromSnapshot(snap)
		}
		sess.set = set
	}

	return fn(sess.set)
}

// persist writes the favorites snapshot, logging and swallowing any
// failure. Callers hold the session lock.
func (s *FavoritesService) persist(ctx context.Context, key shopping.SessionKey, set *shopping.Favorites) {
	if err := s.snapshots.SaveFavorites(ctx, key, set.Snapshot()); err != nil {
		s.logger.Warn("Failed to persist favorites snapshot, in-memory state remains authoritative",
			zap.String("key", key.FavoritesKey()),
			zap.Error(err))
	}
}

// Get returns the session's favorites
func (s *FavoritesService) Get(ctx context.Context, key shopping.SessionKey) FavoritesResponse {
	var resp FavoritesResponse
	_ = s.withFavorites(ctx, key, func(set *shopping.Favorites) error {
		resp = toFavoritesResponse(set)
		return nil
	})
	return resp
}

// Toggle flips a product's favorite membership: removes it when present,
// adds it otherwise. One state transition, one persist.
func (s *FavoritesService) Toggle(ctx context.Context, key shopping.SessionKey, productID uuid.UUID) (FavoritesResponse, error) {
	var resp FavoritesResponse
	err := s.withFavorites(ctx, key, func(set *shopping.Favorites) error {
		// Removing needs no product lookup
		if set.Remove(productID) {
			s.persist(ctx, key, set)
			resp = toFavoritesResponse(set)
			return nil
		}

		product, err := s.productRepo.FindByIDForStore(ctx, key.StoreID, productID)
		if err != nil {
			return err
		}

		set.Add(shopping.Favorite{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageURL:  product.ImageURL,
			Slug:      product.Slug,
		})
		s.persist(ctx, key, set)
		resp = toFavoritesResponse(set)
		return nil
	})
	if err != nil {
		return FavoritesResponse{}, err
	}
	return resp, nil
}

// Remove deletes a favorite. An unknown product ID is a no-op.
func (s *FavoritesService) Remove(ctx context.Context, key shopping.SessionKey, productID uuid.UUID) FavoritesResponse {
	var resp FavoritesResponse
	_ = s.withFavorites(ctx, key, func(set *shopping.Favorites) error {
		if set.Remove(productID) {
			s.persist(ctx, key, set)
		}
		resp = toFavoritesResponse(set)
		return nil
	})
	return resp
}

// IsFavorite reports whether the product is favorited in this session
func (s *FavoritesService) IsFavorite(ctx context.Context, key shopping.SessionKey, productID uuid.UUID) bool {
	var favorite bool
	_ = s.withFavorites(ctx, key, func(set *shopping.Favorites) error {
		favorite = set.IsFavorite(productID)
		return nil
	})
	return favorite
}

// Clear empties the session's favorites
func (s *FavoritesService) Clear(ctx context.Context, key shopping.SessionKey) FavoritesResponse {
	var resp FavoritesResponse
	_ = s.withFavorites(ctx, key, func(set *shopping.Favorites) error {
		if set.Clear() {
			s.persist(ctx, key, set)
		}
		resp = toFavoritesResponse(set)
		return nil
	})
	return resp
}

// Evict drops the in-memory aggregate for a session
func (s *FavoritesService) Evict(key shopping.SessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

func toFavoritesResponse(set *shopping.Favorites) FavoritesResponse {
	items := set.Items()
	entries := make([]FavoriteResponse, 0, len(items))
	for _, item := range items {
		entries = append(entries, FavoriteResponse{
			ProductID:   item.ProductID,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice,
			ImageURL:    item.ImageURL,
			Slug:        item.Slug,
			FavoritedAt: item.FavoritedAt,
		})
	}
	return FavoritesResponse{
		Items: entries,
		Count: set.Count(),
	}
}
