package routers

import (
	"github.com/gin-gonic/gin"

	"demo-shop/internal/handlers"
	"demo-shop/internal/middleware"
	"demo-shop/internal/observability"
)

// NewRouter registers all endpoints and applies per-endpoint instrumentation.
func NewRouter(m *observability.Metrics, h *handlers.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)

	r.GET("/", middleware.Instrument(m, "home", h.Home))
	r.GET("/catalog", middleware.Instrument(m, "catalog", h.Catalog))
	r.GET("/product/:product_id", middleware.Instrument(m, "product-detail", h.ProductDetail))
	r.GET("/checkout", middleware.Instrument(m, "checkout", h.Checkout))

	r.POST("/api/orders", middleware.Instrument(m, "create-order", h.CreateOrder))
	r.GET("/api/inventory/:sku", middleware.Instrument(m, "check-inventory", h.CheckInventory))
	r.POST("/api/refunds", middleware.Instrument(m, "process-refund", h.ProcessRefund))
	r.GET("/api/recommendations/:user_id", middleware.Instrument(m, "get-recommendations", h.GetRecommendations))
	r.DELETE("/api/cache/clear", middleware.Instrument(m, "clear-cache", h.ClearCache))

	r.POST("/scenario/baseline", middleware.Instrument(m, "scenario-baseline", h.ScenarioBaseline))
	r.POST("/scenario/checkout-error-spike", middleware.Instrument(m, "scenario-checkout-error-spike", h.ScenarioCheckoutErrorSpike))
	r.POST("/scenario/checkout-latency-spike", middleware.Instrument(m, "scenario-checkout-latency-spike", h.ScenarioCheckoutLatencySpike))
	r.POST("/scenario/trigger-orders", middleware.Instrument(m, "scenario-trigger-orders", h.ScenarioTriggerOrders))
	r.POST("/scenario/inventory-timeouts", middleware.Instrument(m, "scenario-inventory-timeouts", h.ScenarioInventoryTimeouts))

	return r
}
