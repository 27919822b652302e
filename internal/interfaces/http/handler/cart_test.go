package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/backend/internal/interfaces/http/middleware"
)

func postJSON(t *testing.T, router http.Handler, sessionID uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.DefaultSessionHeader, sessionID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCartHandler_AddItem(t *testing.T) {
	s := newStorefront(t)
	product := s.seedProduct(t, "caneca-azul", 25, 10)
	sessionID := uuid.New()

	t.Run("adds a product to the cart", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
			"product_id": product.ID,
			"quantity":   2,
		})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, float64(2), data["item_count"])
		items := data["items"].([]any)
		require.Len(t, items, 1)
		line := items[0].(map[string]any)
		assert.Equal(t, product.ID.String(), line["product_id"])
		assert.Equal(t, float64(2), line["quantity"])
	})

	t.Run("saturates at the stock limit", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
			"product_id": product.ID,
			"quantity":   500,
		})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		items := resp.Data.(map[string]any)["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, float64(10), items[0].(map[string]any)["quantity"])
	})

	t.Run("returns 404 for an unknown product", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
			"product_id": uuid.New(),
			"quantity":   1,
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})

	t.Run("returns 422 for an inactive product", func(t *testing.T) {
		hidden := s.seedProduct(t, "caneca-verde", 30, 5)
		require.NoError(t, hidden.Deactivate())

		w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
			"product_id": hidden.ID,
			"quantity":   1,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "ERR_PRODUCT_UNAVAILABLE", resp.Error.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
			"product_id": "not-a-uuid",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartHandler_UpdateQuantity(t *testing.T) {
	s := newStorefront(t)
	product := s.seedProduct(t, "camiseta-preta", 80, 4)
	sessionID := uuid.New()

	w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("clamps above the stock limit", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PATCH", "/api/v1/cart/items/"+product.ID.String(), gin.H{
			"quantity": 99,
		})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		items := resp.Data.(map[string]any)["items"].([]any)
		assert.Equal(t, float64(4), items[0].(map[string]any)["quantity"])
	})

	t.Run("clamps below one", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PATCH", "/api/v1/cart/items/"+product.ID.String(), gin.H{
			"quantity": -3,
		})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		items := resp.Data.(map[string]any)["items"].([]any)
		assert.Equal(t, float64(1), items[0].(map[string]any)["quantity"])
	})

	t.Run("rejects a malformed product ID", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "PATCH", "/api/v1/cart/items/banana", gin.H{
			"quantity": 2,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	s := newStorefront(t)
	one := s.seedProduct(t, "caneca-um", 10, 5)
	two := s.seedProduct(t, "caneca-dois", 20, 5)
	sessionID := uuid.New()

	for _, p := range []uuid.UUID{one.ID, two.ID} {
		w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
			"product_id": p,
			"quantity":   1,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("removes a single line", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "DELETE", "/api/v1/cart/items/"+one.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		items := resp.Data.(map[string]any)["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, two.ID.String(), items[0].(map[string]any)["product_id"])
	})

	t.Run("clears the cart", func(t *testing.T) {
		w := postJSON(t, s.router, sessionID, "DELETE", "/api/v1/cart", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, float64(0), resp.Data.(map[string]any)["item_count"])
	})
}

func TestCartHandler_Totals(t *testing.T) {
	s := newStorefront(t)
	product := s.seedProduct(t, "caneca-cara", 120, 8)
	sessionID := uuid.New()

	w := postJSON(t, s.router, sessionID, "POST", "/api/v1/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, s.router, sessionID, "GET", "/api/v1/cart/totals", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "360", fmt.Sprintf("%v", data["total"]))
	assert.Equal(t, float64(3), data["item_count"])
	assert.Equal(t, float64(1), data["line_count"])
}

func TestCartHandler_SessionIsolation(t *testing.T) {
	s := newStorefront(t)
	product := s.seedProduct(t, "caneca-isolada", 15, 5)

	first := uuid.New()
	second := uuid.New()

	w := postJSON(t, s.router, first, "POST", "/api/v1/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, s.router, second, "GET", "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, float64(0), resp.Data.(map[string]any)["item_count"])
}
