package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/infrastructure/http/v1/dto"
)

const (
	defaultHistoryLimit = 50
	maxImageSize        = 5 << 20
)

// CatalogHandler serves categories and products.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		service:     service,
	}
}

// --- Categories ---

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var q dto.CategoryListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ListCategories(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, identity[*catalog.Category]))
}

// CreateCategory handles POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat, err := h.service.CreateCategory(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cat)
}

// GetCategory handles GET /categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}

	details, err := h.service.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, details)
}

// UpdateCategory handles PUT /categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat, err := h.service.UpdateCategory(c.Request.Context(), categoryID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cat)
}

// DeleteCategory handles DELETE /categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// CategoryPath handles GET /categories/:id/path
func (h *CatalogHandler) CategoryPath(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}

	path, err := h.service.CategoryPath(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": path})
}

// CategoryHistory handles GET /categories/:id/history
func (h *CatalogHandler) CategoryHistory(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}

	entries, err := h.service.CategoryHistory(c.Request.Context(), categoryID, h.ParseIntQuery(c, "limit", defaultHistoryLimit))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": entries})
}

// RecomputeCategoryRollup handles POST /categories/:id/rollup
func (h *CatalogHandler) RecomputeCategoryRollup(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}

	cat, err := h.service.RecomputeCategoryRollup(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cat)
}

// --- Products ---

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q dto.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ListProducts(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromProduct))
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromProduct(p))
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// UpdateProduct handles PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateProduct(c.Request.Context(), productID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// DeleteProduct handles DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustStock handles POST /products/:id/stock
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.StockAdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.AdjustStock(c.Request.Context(), productID, req.Delta)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// UploadImage handles POST /products/:id/image (multipart field "file").
func (h *CatalogHandler) UploadImage(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithField("file", nil))
		return
	}
	if fh.Size > maxImageSize {
		h.Error(c, apperror.NewValidation("file is too large").WithField("file", fh.Size))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer f.Close()

	p, err := h.service.AttachProductImage(c.Request.Context(), productID, fh.Filename, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}
