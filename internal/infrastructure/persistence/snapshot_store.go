package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vitrine/backend/internal/domain/shopping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	snapshotKindCart      = "cart"
	snapshotKindFavorites = "favorites"
)

// SnapshotRecord is the durable form of a session's cart or favorites
// snapshot. One row per (store, session, kind).
type SnapshotRecord struct {
	StoreID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(20);primaryKey"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (SnapshotRecord) TableName() string {
	return "session_snapshots"
}

// GormSnapshotStore persists session snapshots in the relational database.
// It is the durable alternative to the Redis-backed store for deployments
// without a Redis instance.
type GormSnapshotStore struct {
	db *gorm.DB
}

// NewGormSnapshotStore creates a snapshot store over the given database
func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

var _ shopping.SnapshotStore = (*GormSnapshotStore)(nil)

// SaveCart stores the session's cart snapshot
func (s *GormSnapshotStore) SaveCart(ctx context.Context, key shopping.SessionKey, snap shopping.CartSnapshot) error {
	data, err := shopping.EncodeCartSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return s.upsert(ctx, key, snapshotKindCart, data)
}

// LoadCart loads the session's cart snapshot
func (s *GormSnapshotStore) LoadCart(ctx context.Context, key shopping.SessionKey) (shopping.CartSnapshot, bool, error) {
	data, found, err := s.load(ctx, key, snapshotKindCart)
	if err != nil || !found {
		return shopping.CartSnapshot{}, false, err
	}
	snap, err := shopping.DecodeCartSnapshot(data)
	if err != nil {
		return shopping.CartSnapshot{}, false, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return snap, true, nil
}

// DeleteCart removes the session's cart snapshot
func (s *GormSnapshotStore) DeleteCart(ctx context.Context, key shopping.SessionKey) error {
	return s.delete(ctx, key, snapshotKindCart)
}

// SaveFavorites stores the session's favorites snapshot
func (s *GormSnapshotStore) SaveFavorites(ctx context.Context, key shopping.SessionKey, snap shopping.FavoritesSnapshot) error {
	data, err := shopping.EncodeFavoritesSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to encode favorites snapshot: %w", err)
	}
	return s.upsert(ctx, key, snapshotKindFavorites, data)
}

// LoadFavorites loads the session's favorites snapshot
func (s *GormSnapshotStore) LoadFavorites(ctx context.Context, key shopping.SessionKey) (shopping.FavoritesSnapshot, bool, error) {
	data, found, err := s.load(ctx, key, snapshotKindFavorites)
	if err != nil || !found {
		return shopping.FavoritesSnapshot{}, false, err
	}
	snap, err := shopping.DecodeFavoritesSnapshot(data)
	if err != nil {
		return shopping.FavoritesSnapshot{}, false, fmt.Errorf("failed to decode favorites snapshot: %w", err)
	}
	return snap, true, nil
}

// DeleteFavorites removes the session's favorites snapshot
func (s *GormSnapshotStore) DeleteFavorites(ctx context.Context, key shopping.SessionKey) error {
	return s.delete(ctx, key, snapshotKindFavorites)
}

// PurgeIdleSessions deletes snapshots not touched since the cutoff.
// Returns the number of rows removed.
func (s *GormSnapshotStore) PurgeIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&SnapshotRecord{})
	return result.RowsAffected, result.Error
}

func (s *GormSnapshotStore) upsert(ctx context.Context, key shopping.SessionKey, kind string, payload []byte) error {
	record := SnapshotRecord{
		StoreID:   key.StoreID,
		SessionID: key.SessionID,
		Kind:      kind,
		Payload:   payload,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "session_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *GormSnapshotStore) load(ctx context.Context, key shopping.SessionKey, kind string) ([]byte, bool, error) {
	var record SnapshotRecord
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND session_id = ? AND kind = ?", key.StoreID, key.SessionID, kind).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return record.Payload, true, nil
}

func (s *GormSnapshotStore) delete(ctx context.Context, key shopping.SessionKey, kind string) error {
	return s.db.WithContext(ctx).
		Where("store_id = ? AND session_id = ? AND kind = ?", key.StoreID, key.SessionID, kind).
		Delete(&SnapshotRecord{}).Error
}
