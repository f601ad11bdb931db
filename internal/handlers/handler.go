package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"demo-shop/internal/models"
	"demo-shop/internal/observability"
	"demo-shop/internal/scenario"
	"demo-shop/internal/shop"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	Shop *shop.Shop
	Drv  *scenario.Driver
	M    *observability.Metrics
}

// New creates a new Handlers instance with dependencies injected.
func New(s *shop.Shop, d *scenario.Driver, m *observability.Metrics) *Handlers {
	return &Handlers{Shop: s, Drv: d, M: m}
}

// Health is a simple liveness endpoint.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Home serves the storefront landing payload.
func (h *Handlers) Home(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	data, err := h.Shop.Home(ctx)
	h.observeShop(ctx, "home", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// Catalog lists the product catalog.
func (h *Handlers) Catalog(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	data, err := h.Shop.Catalog(ctx)
	h.observeShop(ctx, "catalog", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// ProductDetail looks up one product by id.
func (h *Handlers) ProductDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, errors.New("product_id must be an integer"))
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	product, err := h.Shop.ProductDetail(ctx, id)
	h.observeShop(ctx, "product-detail", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Checkout runs the payment flow in one of the normal/slow/error modes.
func (h *Handlers) Checkout(c *gin.Context) {
	mode := c.DefaultQuery("mode", shop.ModeNormal)
	if !shop.ValidMode(mode) {
		respondErr(c, http.StatusBadRequest, fmt.Errorf("unknown checkout mode %q", mode))
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	data, err := h.Shop.Checkout(ctx, mode)
	h.observeShop(ctx, "checkout", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// CreateOrder validates the order payload and creates a simulated order.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	order, err := h.Shop.CreateOrder(ctx, req.PaymentMethod)
	h.observeShop(ctx, "create-order", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CheckInventory reports a simulated stock level for one SKU.
func (h *Handlers) CheckInventory(c *gin.Context) {
	sku := c.Param("sku")

	ctx := c.Request.Context()
	start := time.Now()

	inv, err := h.Shop.CheckInventory(ctx, sku)
	h.observeShop(ctx, "check-inventory", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ProcessRefund simulates handing a refund to the payment processor.
func (h *Handlers) ProcessRefund(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respondErr(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	refund, err := h.Shop.ProcessRefund(ctx)
	h.observeShop(ctx, "process-refund", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, refund)
}

// GetRecommendations returns simulated recommendations for one user.
func (h *Handlers) GetRecommendations(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, errors.New("user_id must be an integer"))
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	recs, err := h.Shop.GetRecommendations(ctx, userID)
	h.observeShop(ctx, "get-recommendations", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// ClearCache simulates the admin cache flush.
func (h *Handlers) ClearCache(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	status, err := h.Shop.ClearCache(ctx)
	h.observeShop(ctx, "clear-cache", start, err)
	if err != nil {
		respondErr(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// statusFor maps the shop's simulated failure taxonomy onto HTTP statuses.
// Catalog and checkout-token failures stay 500s: they stand in for unexpected
// server-side crashes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shop.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrPaymentMethodMissing), errors.Is(err, shop.ErrPaymentMethodInvalid):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrInventoryTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, shop.ErrProcessorUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, shop.ErrCacheForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// observeShop records duration and error count for one simulated operation.
func (h *Handlers) observeShop(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	h.M.ShopOpDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		h.M.ShopOpErrors.Add(ctx, 1, attrs)
	}
}

func respondErr(c *gin.Context, status int, err error) {
	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}
