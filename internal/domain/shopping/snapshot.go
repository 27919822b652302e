package shopping

import (
	"encoding/json"
	"fmt"
)

// SnapshotVersion is the current schema version of persisted aggregates
const SnapshotVersion = 1

// CartSnapshot is the serialized form of a cart aggregate
type CartSnapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// FavoritesSnapshot is the serialized form of a favorites aggregate
type FavoritesSnapshot struct {
	Version int        `json:"version"`
	Items   []Favorite `json:"items"`
}

// Snapshot captures the cart state for persistence
func (c *Cart) Snapshot() CartSnapshot {
	return CartSnapshot{
		Version: SnapshotVersion,
		Items:   c.Items(),
	}
}

// Snapshot captures the favorites state for persistence
func (f *Favorites) Snapshot() FavoritesSnapshot {
	return FavoritesSnapshot{
		Version: SnapshotVersion,
		Items:   f.Items(),
	}
}

// CartFromSnapshot restores a cart aggregate from a snapshot.
// Restored quantities are re-clamped so a snapshot written against
// stale stock limits cannot violate the quantity invariant. A snapshot
// from an unknown (newer) schema version resets to an empty cart.
func CartFromSnapshot(snap CartSnapshot) *Cart {
	cart := NewCart()
	if snap.Version > SnapshotVersion {
		return cart
	}
	for _, item := range snap.Items {
		cart.AddItem(item)
	}
	return cart
}

// FavoritesFromSnapshot restores a favorites aggregate from a snapshot.
// Duplicate entries collapse to one (idempotent add); an unknown schema
// version resets to an empty set.
func FavoritesFromSnapshot(snap FavoritesSnapshot) *Favorites {
	favorites := NewFavorites()
	if snap.Version > SnapshotVersion {
		return favorites
	}
	for _, item := range snap.Items {
		favorites.Add(item)
	}
	return favorites
}

// EncodeCartSnapshot serializes a cart snapshot to JSON
func EncodeCartSnapshot(snap CartSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeCartSnapshot deserializes a cart snapshot. Empty payloads decode
// to an empty snapshot at the current version (tolerant reader).
func DecodeCartSnapshot(data []byte) (CartSnapshot, error) {
	if len(data) == 0 {
		return CartSnapshot{Version: SnapshotVersion, Items: []LineItem{}}, nil
	}
	var snap CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return CartSnapshot{}, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return snap, nil
}

// EncodeFavoritesSnapshot serializes a favorites snapshot to JSON
func EncodeFavoritesSnapshot(snap FavoritesSnapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favorites snapshot: %w", err)
	}
	return data, nil
}

// DecodeFavoritesSnapshot deserializes a favorites snapshot. Empty
// payloads decode to an empty snapshot at the current version.
func DecodeFavoritesSnapshot(data []byte) (FavoritesSnapshot, error) {
	if len(data) == 0 {
		return FavoritesSnapshot{Version: SnapshotVersion, Items: []Favorite{}}, nil
	}
	var snap FavoritesSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return FavoritesSnapshot{}, fmt.Errorf("failed to decode favorites snapshot: %w", err)
	}
	return snap, nil
}
