package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shoppingapp "github.com/vitrine/backend/internal/application/shopping"
)

// CartHandler handles shopping cart API endpoints
type CartHandler struct {
	BaseHandler
	cartService *shoppingapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *shoppingapp.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// UpdateQuantityRequest represents a request to change a cart line's quantity
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the session's cart with derived totals
func (h *CartHandler) Get(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	h.Success(c, h.cartService.Get(c.Request.Context(), key))
}

// AddItem adds a product to the cart, merging quantity into an existing line
func (h *CartHandler) AddItem(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	var req shoppingapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), key, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// UpdateQuantity sets the quantity of an existing cart line
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	h.Success(c, h.cartService.UpdateQuantity(c.Request.Context(), key, productID, req.Quantity))
}

// RemoveItem removes a single product from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	h.Success(c, h.cartService.RemoveItem(c.Request.Context(), key, productID))
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	h.Success(c, h.cartService.Clear(c.Request.Context(), key))
}

// Totals returns only the cart's derived values
func (h *CartHandler) Totals(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	h.Success(c, h.cartService.Totals(c.Request.Context(), key))
}
