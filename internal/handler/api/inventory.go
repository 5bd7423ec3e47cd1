package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	reqdto "order-checkout/internal/handler/dto/request"
	resdto "order-checkout/internal/handler/dto/response"
	"order-checkout/internal/pkg/errs"
	"order-checkout/internal/usecase/commands"
	"order-checkout/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventoryCommands commands.InventoryCommands
	inventoryQueries  queries.InventoryQueries
}

func NewInventoryHandler(inventoryCommands commands.InventoryCommands, inventoryQueries queries.InventoryQueries) *InventoryHandler {
	return &InventoryHandler{
		inventoryCommands: inventoryCommands,
		inventoryQueries:  inventoryQueries,
	}
}

// @Summary Provision inventory
// @Description Create the stock ledger record for a product
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ProvisionInventoryRequest true "Provision request"
// @Success 201 {object} resdto.InventoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /inventory [post]
func (h *InventoryHandler) Provision(c *gin.Context) {
	var req reqdto.ProvisionInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.inventoryCommands.Provision(c.Request.Context(), req.ProductID, req.InitialStock)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProductAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Product already provisioned",
			})
		case errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Domain validation failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromInventoryView(view))
}

// @Summary Reserve stock
// @Description Move available stock into the reserved pool
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StockOperationRequest true "Reserve request"
// @Success 200 {object} resdto.StockLevelsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /inventory/reserve [put]
func (h *InventoryHandler) Reserve(c *gin.Context) {
	h.stockOperation(c, "reserve", h.inventoryCommands.Reserve)
}

// @Summary Release stock
// @Description Return reserved stock to the available pool
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StockOperationRequest true "Release request"
// @Success 200 {object} resdto.StockLevelsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /inventory/release [put]
func (h *InventoryHandler) Release(c *gin.Context) {
	h.stockOperation(c, "release", h.inventoryCommands.Release)
}

// @Summary Deduct stock
// @Description Consume reserved stock after a settled payment
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StockOperationRequest true "Deduct request"
// @Success 200 {object} resdto.StockLevelsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /inventory/deduct [put]
func (h *InventoryHandler) Deduct(c *gin.Context) {
	h.stockOperation(c, "deduct", h.inventoryCommands.Deduct)
}

// @Summary Adjust stock
// @Description Apply a manual correction to available stock
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AdjustStockRequest true "Adjust request"
// @Success 200 {object} resdto.InventoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /inventory/adjust [put]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req reqdto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.inventoryCommands.Adjust(c.Request.Context(), req.ProductID, req.Delta, req.Reason)
	if err != nil {
		h.writeStockError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromInventoryView(view))
}

// @Summary Get inventory
// @Description Get the stock ledger record for a product
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} resdto.InventoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /inventory/{productId} [get]
func (h *InventoryHandler) GetByProductID(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	view, err := h.inventoryQueries.GetByProductID(c.Request.Context(), productID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromInventoryView(view))
}

// @Summary Check availability
// @Description Check whether a quantity can currently be served from available stock
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param quantity query int true "Requested quantity"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /inventory/{productId}/availability [get]
func (h *InventoryHandler) CheckAvailability(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid quantity parameter",
		})
		return
	}

	available, err := h.inventoryQueries.HasSufficientStock(c.Request.Context(), productID, quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.AvailabilityResponse{
		ProductID: productID,
		Quantity:  quantity,
		Available: available,
	})
}

type stockOperationFunc func(ctx context.Context, productID uuid.UUID, quantity int64, referenceID uuid.UUID) (*commands.StockLevels, error)

func (h *InventoryHandler) stockOperation(c *gin.Context, operation string, op stockOperationFunc) {
	var req reqdto.StockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	levels, err := op(c.Request.Context(), req.ProductID, req.Quantity, req.Reference())
	if err != nil {
		h.writeStockError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromStockLevels(levels, operation, req.ReferenceID))
}

func (h *InventoryHandler) writeStockError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, errs.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must be positive",
		})
	case errors.Is(err, errs.ErrInsufficientStock):
		// Covers reservation underflow as well; both report as a conflict
		// with the current counters
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
