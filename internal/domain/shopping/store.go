package shopping

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SessionKey identifies a shopper's session within a single storefront.
// Each aggregate is persisted under its own namespaced key so the cart
// and favorites of one session can never collide with another store or
// with each other.
type SessionKey struct {
	StoreID   uuid.UUID
	SessionID uuid.UUID
}

// CartKey returns the storage key for the session's cart aggregate
func (k SessionKey) CartKey() string {
	return fmt.Sprintf("cart:%s:%s", k.StoreID, k.SessionID)
}

// FavoritesKey returns the storage key for the session's favorites aggregate
func (k SessionKey) FavoritesKey() string {
	return fmt.Sprintf("favorites:%s:%s", k.StoreID, k.SessionID)
}

// SnapshotStore persists session aggregates as versioned snapshots.
// Load returns found=false for an absent key, which callers treat as an
// empty aggregate. Implementations must keep Save atomic per key; they
// are free to expire entries.
type SnapshotStore interface {
	SaveCart(ctx context.Context, key SessionKey, snap CartSnapshot) error
	LoadCart(ctx context.Context, key SessionKey) (snap CartSnapshot, found bool, err error)
	DeleteCart(ctx context.Context, key SessionKey) error

	SaveFavorites(ctx context.Context, key SessionKey, snap FavoritesSnapshot) error
	LoadFavorites(ctx context.Context, key SessionKey) (snap FavoritesSnapshot, found bool, err error)
	DeleteFavorites(ctx context.Context, key SessionKey) error
}
