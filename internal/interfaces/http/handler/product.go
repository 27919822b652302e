package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/vitrine/backend/internal/application/catalog"
)

// ProductHandler handles storefront catalog API endpoints
type ProductHandler struct {
	BaseHandler
	browseService *catalogapp.BrowseService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(browseService *catalogapp.BrowseService) *ProductHandler {
	return &ProductHandler{
		browseService: browseService,
	}
}

// ListProductsRequest represents the product listing query parameters
type ListProductsRequest struct {
	Category string `form:"category" binding:"omitempty,uuid"`
	Sort     string `form:"sort"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List returns the store's visible products, filtered, sorted and paginated
func (h *ProductHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Store could not be resolved")
		return
	}

	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := catalogapp.ListQuery{
		Sort:     req.Sort,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Category != "" {
		categoryID, err := uuid.Parse(req.Category)
		if err != nil {
			h.BadRequest(c, "Invalid category ID")
			return
		}
		query.CategoryID = &categoryID
	}

	page, err := h.browseService.ListProducts(c.Request.Context(), storeID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, int64(page.Total), page.Page, page.PageSize)
}

// GetBySlug returns a single product looked up by its URL slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Store could not be resolved")
		return
	}

	slug := c.Param("slug")
	if slug == "" {
		h.BadRequest(c, "Product slug is required")
		return
	}

	product, err := h.browseService.GetProduct(c.Request.Context(), storeID, slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// ListCategories returns the store's categories in display order
func (h *ProductHandler) ListCategories(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Store could not be resolved")
		return
	}

	categories, err := h.browseService.ListCategories(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}
