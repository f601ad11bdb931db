package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"demo-shop/internal/scenario"
)

// ScenarioBaseline fires a burst of healthy browsing traffic.
func (h *Handlers) ScenarioBaseline(c *gin.Context) {
	h.runScenario(c, "baseline", h.Drv.Baseline)
}

// ScenarioCheckoutErrorSpike fires a burst of always-failing checkouts.
func (h *Handlers) ScenarioCheckoutErrorSpike(c *gin.Context) {
	h.runScenario(c, "checkout-error-spike", h.Drv.CheckoutErrorSpike)
}

// ScenarioCheckoutLatencySpike fires a burst of degraded-latency checkouts.
func (h *Handlers) ScenarioCheckoutLatencySpike(c *gin.Context) {
	h.runScenario(c, "checkout-latency-spike", h.Drv.CheckoutLatencySpike)
}

// ScenarioTriggerOrders fires a burst of order submissions, a share of
// them deliberately malformed.
func (h *Handlers) ScenarioTriggerOrders(c *gin.Context) {
	h.runScenario(c, "trigger-orders", h.Drv.TriggerOrders)
}

// ScenarioInventoryTimeouts fires a burst of lookups against the SKU
// that is wired to time out.
func (h *Handlers) ScenarioInventoryTimeouts(c *gin.Context) {
	h.runScenario(c, "inventory-timeouts", h.Drv.InventoryTimeouts)
}

// runScenario resolves the burst size, drives the burst to completion and
// reports the run. The burst itself never fails: downstream errors are part
// of the traffic being generated.
func (h *Handlers) runScenario(c *gin.Context, name string, run func(context.Context, int) scenario.Result) {
	n, err := requestCount(c, scenario.DefaultRequests[name])
	if err != nil {
		respondErr(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	res := run(ctx, n)

	attrs := metric.WithAttributes(attribute.String("scenario", name))
	h.M.ScenarioRuns.Add(ctx, 1, attrs)
	h.M.ScenarioRunTime.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	c.JSON(http.StatusOK, res)
}

// requestCount reads the optional requests query parameter, falling back
// to the per-scenario default.
func requestCount(c *gin.Context, def int) (int, error) {
	raw, ok := c.GetQuery("requests")
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("requests must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
