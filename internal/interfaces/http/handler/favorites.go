package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shoppingapp "github.com/vitrine/backend/internal/application/shopping"
)

// FavoritesHandler handles favorites API endpoints
type FavoritesHandler struct {
	BaseHandler
	favoritesService *shoppingapp.FavoritesService
}

// NewFavoritesHandler creates a new FavoritesHandler
func NewFavoritesHandler(favoritesService *shoppingapp.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{
		favoritesService: favoritesService,
	}
}

// Get returns the session's favorites
func (h *FavoritesHandler) Get(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	h.Success(c, h.favoritesService.Get(c.Request.Context(), key))
}

// Toggle flips a product in or out of the favorites set
func (h *FavoritesHandler) Toggle(c *gin.Context) {
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

	favorites, err := h.favoritesService.Toggle(c.Request.Context(), key, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, favorites)
}

// Remove removes a product from the favorites set
func (h *FavoritesHandler) Remove(c *gin.Context) {
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

	h.Success(c, h.favoritesService.Remove(c.Request.Context(), key, productID))
}

// Clear empties the favorites set
func (h *FavoritesHandler) Clear(c *gin.Context) {
	key, err := getSessionKey(c)
	if err != nil {
		h.BadRequest(c, "Session could not be resolved")
		return
	}

	h.Success(c, h.favoritesService.Clear(c.Request.Context(), key))
}
