package shopping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSnapshotRoundTrip(t *testing.T) {
	cart := NewCart()
	a := testItem(2, 10)
	b := testItem(5, 5)
	cart.AddItem(a)
	cart.AddItem(b)

	data, err := EncodeCartSnapshot(cart.Snapshot())
	require.NoError(t, err)

	decoded, err := DecodeCartSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, decoded.Version)

	restored := CartFromSnapshot(decoded)
	require.Equal(t, cart.Len(), restored.Len())
	assert.True(t, cart.Total().Equal(restored.Total()))
	assert.Equal(t, cart.TotalItemCount(), restored.TotalItemCount())

	original := cart.Items()
	roundTripped := restored.Items()
	for i := range original {
		assert.Equal(t, original[i].ProductID, roundTripped[i].ProductID)
		assert.Equal(t, original[i].Quantity, roundTripped[i].Quantity)
		assert.True(t, original[i].UnitPrice.Equal(roundTripped[i].UnitPrice))
	}
}

func TestFavoritesSnapshotRoundTrip(t *testing.T) {
	favorites := NewFavorites()
	favorites.Add(testFavorite())
	favorites.Add(testFavorite())

	data, err := EncodeFavoritesSnapshot(favorites.Snapshot())
	require.NoError(t, err)

	decoded, err := DecodeFavoritesSnapshot(data)
	require.NoError(t, err)

	restored := FavoritesFromSnapshot(decoded)
	require.Equal(t, favorites.Count(), restored.Count())

	original := favorites.Items()
	roundTripped := restored.Items()
	for i := range original {
		assert.Equal(t, original[i].ProductID, roundTripped[i].ProductID)
		assert.Equal(t, original[i].Slug, roundTripped[i].Slug)
		assert.True(t, original[i].FavoritedAt.Equal(roundTripped[i].FavoritedAt))
	}
}

func TestDecodeTolerantReader(t *testing.T) {
	t.Run("empty payload decodes to empty current-version snapshot", func(t *testing.T) {
		snap, err := DecodeCartSnapshot(nil)
		require.NoError(t, err)
		assert.Equal(t, SnapshotVersion, snap.Version)
		assert.Empty(t, snap.Items)

		fav, err := DecodeFavoritesSnapshot([]byte{})
		require.NoError(t, err)
		assert.Equal(t, SnapshotVersion, fav.Version)
		assert.Empty(t, fav.Items)
	})

	t.Run("malformed payload returns an error", func(t *testing.T) {
		_, err := DecodeCartSnapshot([]byte("{not json"))
		require.Error(t, err)

		_, err = DecodeFavoritesSnapshot([]byte("[]"))
		require.Error(t, err)
	})
}

func TestSnapshotVersionHandling(t *testing.T) {
	t.Run("newer cart schema resets to empty", func(t *testing.T) {
		snap := CartSnapshot{Version: SnapshotVersion + 1, Items: []LineItem{testItem(2, 10)}}
		assert.Equal(t, 0, CartFromSnapshot(snap).Len())
	})

	t.Run("newer favorites schema resets to empty", func(t *testing.T) {
		snap := FavoritesSnapshot{Version: SnapshotVersion + 1, Items: []Favorite{testFavorite()}}
		assert.Equal(t, 0, FavoritesFromSnapshot(snap).Count())
	})

	t.Run("legacy unversioned cart payload migrates", func(t *testing.T) {
		snap := CartSnapshot{Version: 0, Items: []LineItem{testItem(2, 10)}}
		assert.Equal(t, 1, CartFromSnapshot(snap).Len())
	})
}

func TestCartFromSnapshotReclamps(t *testing.T) {
	item := testItem(2, 10)
	item.Quantity = 8
	snap := CartSnapshot{Version: SnapshotVersion, Items: []LineItem{item}}

	// The stored quantity exceeds a reduced stock limit
	snap.Items[0].StockLimit = 3

	restored := CartFromSnapshot(snap)
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, 3, restored.Items()[0].Quantity)
}

func TestCartFromSnapshotDropsZeroStockItems(t *testing.T) {
	item := testItem(2, 10)
	item.StockLimit = 0
	snap := CartSnapshot{Version: SnapshotVersion, Items: []LineItem{item}}

	assert.Equal(t, 0, CartFromSnapshot(snap).Len())
}

func TestSessionKeyNamespacing(t *testing.T) {
	key := SessionKey{StoreID: uuid.New(), SessionID: uuid.New()}

	assert.NotEqual(t, key.CartKey(), key.FavoritesKey())
	assert.Contains(t, key.CartKey(), key.StoreID.String())
	assert.Contains(t, key.CartKey(), key.SessionID.String())

	other := SessionKey{StoreID: uuid.New(), SessionID: key.SessionID}
	assert.NotEqual(t, key.CartKey(), other.CartKey())
}

func TestLineItemSubtotal(t *testing.T) {
	item := testItem(3, 10)
	item.UnitPrice = decimal.RequireFromString("2.50")
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("7.50")))
}
