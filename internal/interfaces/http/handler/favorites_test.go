package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoritesHandler_Toggle(t *testing.T) {
	s := newStorefront(t)
	product := s.seedProduct(t, "caneca-favorita", 35, 6)
	sessionID := uuid.New()

	t.Run("toggle on adds the product", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PUT", "/api/v1/favorites/"+product.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, float64(1), data["count"])
		items := data["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, product.ID.String(), items[0].(map[string]any)["product_id"])
	})

	t.Run("toggle off removes it again", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PUT", "/api/v1/favorites/"+product.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, float64(0), resp.Data.(map[string]any)["count"])
	})

	t.Run("unknown product returns 404", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PUT", "/api/v1/favorites/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})

	t.Run("malformed product ID returns 400", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PUT", "/api/v1/favorites/banana", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFavoritesHandler_RemoveAndClear(t *testing.T) {
	s := newStorefront(t)
	one := s.seedProduct(t, "camiseta-um", 40, 3)
	two := s.seedProduct(t, "camiseta-dois", 45, 3)
	sessionID := uuid.New()

	for _, p := range []uuid.UUID{one.ID, two.ID} {
		w := postJSON(t, s.router, sessionID, "PUT", "/api/v1/favorites/"+p.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("remove deletes one entry", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "DELETE", "/api/v1/favorites/"+one.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, float64(1), resp.Data.(map[string]any)["count"])
	})

	t.Run("clear empties the set", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "DELETE", "/api/v1/favorites", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, float64(0), resp.Data.(map[string]any)["count"])
	})
}

func TestFavoritesHandler_Get(t *testing.T) {
	s := newStorefront(t)
	sessionID := uuid.New()

	w := postJSON(t, s.router, sessionID, "GET", "/api/v1/favorites", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, float64(0), resp.Data.(map[string]any)["count"])
}
