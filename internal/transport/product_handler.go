package transport

import (
	"context"
	"errors"
	"net/http"

	"inventory-api/internal/domain"
	"inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	SKU           string          `json:"sku" validate:"required,max=50"`
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description"`
	CategoryID    uuid.UUID       `json:"category_id" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	ReorderLevel  *int            `json:"reorder_level" validate:"omitempty,gte=0"`
	Status        string          `json:"status"`
}

// StockAdjustmentRequest represents the stock-in/stock-out payload
type StockAdjustmentRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

// ProductResponse is a product together with its derived stock flags
type ProductResponse struct {
	*domain.Product
	NeedsReorder bool `json:"needs_reorder"`
	IsInStock    bool `json:"is_in_stock"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		Product:      p,
		NeedsReorder: p.NeedsReorder(),
		IsInStock:    p.IsInStock(),
	}
}

func newProductResponses(products []*domain.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, newProductResponse(p))
	}
	return responses
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	stockService   service.StockService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, stockService service.StockService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		stockService:   stockService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Deletion is restricted to
// admins.
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/low-stock", h.ListLowStock)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.With(adminOnly).Delete("/{id}", h.Delete)
		r.Post("/{id}/stock-in", h.StockIn)
		r.Post("/{id}/stock-out", h.StockOut)
	})
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param category query string false "Filter by category ID"
// @Param status query string false "Filter by status" Enums(active, inactive, discontinued)
// @Param search query string false "Match against name, SKU or description"
// @Param low_stock query bool false "Only products at or below their reorder level"
// @Param ordering query string false "Sort field, prefix with - for descending"
// @Param page query int false "Page number"
// @Success 200 {object} PaginatedResponse
// @Router /api/products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseProductFilter(w, r)
	if !ok {
		return
	}

	products, count, err := h.productService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	p := Pagination{Page: filter.Page, PageSize: filter.PageSize}
	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(r, p, count, newProductResponses(products)))
}

// ListLowStock godoc
// @Summary List products at or below their reorder level
// @Tags products
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} PaginatedResponse
// @Router /api/products/low-stock [get]
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	products, count, err := h.stockService.ListLowStock(r.Context(), p.Page, p.PageSize)
	if err != nil {
		h.logger.Error("Failed to list low stock products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list low stock products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(r, p, count, newProductResponses(products)))
}

// Create godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product"
// @Success 201 {object} ProductResponse
// @Router /api/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Create(r.Context(), productInput(req))
	if err != nil {
		h.respondProductMutationError(w, err, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, newProductResponse(product))
}

// GetByID godoc
// @Summary Get a product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// Update godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body ProductRequest true "Product"
// @Success 200 {object} ProductResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Update(r.Context(), id, productInput(req))
	if err != nil {
		h.respondProductMutationError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

// Delete godoc
// @Summary Delete a product and its movement history
// @Tags products
// @Param id path string true "Product ID"
// @Success 204
// @Router /api/products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StockIn godoc
// @Summary Add stock to a product
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param adjustment body StockAdjustmentRequest true "Adjustment"
// @Success 200 {object} ProductResponse
// @Router /api/products/{id}/stock-in [post]
func (h *ProductHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.stockService.StockIn)
}

// StockOut godoc
// @Summary Remove stock from a product
// @Tags stock
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param adjustment body StockAdjustmentRequest true "Adjustment"
// @Success 200 {object} ProductResponse
// @Router /api/products/{id}/stock-out [post]
func (h *ProductHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.stockService.StockOut)
}

func (h *ProductHandler) adjustStock(
	w http.ResponseWriter,
	r *http.Request,
	adjust func(ctx context.Context, productID uuid.UUID, quantity int, notes string) (*domain.Product, error),
) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req StockAdjustmentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Stock adjustment validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := adjust(r.Context(), id, req.Quantity, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
		default:
			h.logger.Error("Stock adjustment failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to adjust stock")
		}
		return
	}

	h.logger.Info("Stock adjusted",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock_quantity", product.StockQuantity),
	)
	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return req, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func (h *ProductHandler) respondProductMutationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidPrice):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
	case errors.Is(err, repository.ErrProductSKUExists):
		middleware.RespondWithError(w, http.StatusConflict, "product with this sku already exists")
	default:
		h.logger.Error("Product mutation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func productInput(req ProductRequest) service.ProductInput {
	reorderLevel := 10
	if req.ReorderLevel != nil {
		reorderLevel = *req.ReorderLevel
	}
	return service.ProductInput{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ReorderLevel:  reorderLevel,
		Status:        domain.ProductStatus(req.Status),
	}
}

func (h *ProductHandler) parseProductFilter(w http.ResponseWriter, r *http.Request) (repository.ProductFilter, bool) {
	p := ParsePagination(r)
	orderBy, desc := ParseOrdering(r)

	filter := repository.ProductFilter{
		Search:   r.URL.Query().Get("search"),
		LowStock: r.URL.Query().Get("low_stock") == "true",
		OrderBy:  orderBy,
		Desc:     desc,
		Page:     p.Page,
		PageSize: p.PageSize,
	}

	if category := r.URL.Query().Get("category"); category != "" {
		categoryID, err := uuid.Parse(category)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category filter")
			return filter, false
		}
		filter.CategoryID = &categoryID
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.ProductStatus(status)
		if !s.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid status filter")
			return filter, false
		}
		filter.Status = &s
	}

	return filter, true
}
