package transport

import (
	"errors"
	"net/http"

	"inventory-api/internal/domain"
	"inventory-api/internal/middleware"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockMovementRequest represents the movement creation payload
type StockMovementRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	MovementType string    `json:"movement_type" validate:"required,oneof=in out adjustment"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	Notes        string    `json:"notes"`
}

// StockMovementHandler handles HTTP requests for the movement log
type StockMovementHandler struct {
	stockService service.StockService
	logger       *zap.Logger
}

// NewStockMovementHandler creates a new StockMovementHandler
func NewStockMovementHandler(stockService service.StockService, logger *zap.Logger) *StockMovementHandler {
	return &StockMovementHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// RegisterRoutes registers all stock movement routes
func (h *StockMovementHandler) RegisterRoutes(r chi.Router) {
	r.Route("/stock-movements", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

// List godoc
// @Summary List stock movements, most recent first
// @Tags stock
// @Produce json
// @Param product query string false "Filter by product ID"
// @Param movement_type query string false "Filter by type" Enums(in, out, adjustment)
// @Param page query int false "Page number"
// @Success 200 {object} PaginatedResponse
// @Router /api/stock-movements [get]
func (h *StockMovementHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	filter := repository.MovementFilter{
		Page:     p.Page,
		PageSize: p.PageSize,
	}

	if product := r.URL.Query().Get("product"); product != "" {
		productID, err := uuid.Parse(product)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product filter")
			return
		}
		filter.ProductID = &productID
	}

	if movementType := r.URL.Query().Get("movement_type"); movementType != "" {
		mt := domain.MovementType(movementType)
		if !mt.Valid() {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid movement_type filter")
			return
		}
		filter.MovementType = &mt
	}

	movements, count, err := h.stockService.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list stock movements", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list stock movements")
		return
	}

	if movements == nil {
		movements = []*domain.StockMovement{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(r, p, count, movements))
}

// Create godoc
// @Summary Record a stock movement
// @Description Applies the movement to the product stock in the same
// @Description transaction: "in" adds, "out" subtracts, "adjustment" sets
// @Description the absolute level.
// @Tags stock
// @Accept json
// @Produce json
// @Param movement body StockMovementRequest true "Movement"
// @Success 201 {object} domain.StockMovement
// @Router /api/stock-movements [post]
func (h *StockMovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req StockMovementRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Stock movement validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	movement, err := h.stockService.RecordMovement(
		r.Context(),
		req.ProductID,
		domain.MovementType(req.MovementType),
		req.Quantity,
		req.Notes,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidMovementType):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
		default:
			h.logger.Error("Failed to record stock movement", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record stock movement")
		}
		return
	}

	h.logger.Info("Stock movement recorded",
		zap.String("movement_id", movement.ID.String()),
		zap.String("movement_type", string(movement.MovementType)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, movement)
}
