// Package scenario drives bursts of synthetic traffic against the simulated
// shop endpoints to produce specific telemetry patterns: error spikes, latency
// spikes, payload defects, and timeout clusters.
package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultRequests holds the burst size used for each scenario when the caller
// does not supply one.
var DefaultRequests = map[string]int{
	"baseline":               50,
	"checkout-error-spike":   80,
	"checkout-latency-spike": 80,
	"trigger-orders":         50,
	"inventory-timeouts":     40,
}

const (
	defaultTimeout         = 10 * time.Second
	defaultBaselinePause   = 100 * time.Millisecond
	defaultOrderDefectRate = 0.30

	// Fixed SKU used by inventory-timeouts so the timeout path is hit on a
	// single hot key.
	timeoutSKU = "SKU123"
)

// Config controls how the driver reaches the simulated endpoints.
type Config struct {
	// BaseURL is the root the burst calls are sent to. Scenario traffic goes
	// over the network even when it targets this same process.
	BaseURL string

	// Timeout bounds each outbound call. A call that exceeds it counts as a
	// transport failure and is discarded like any other.
	Timeout time.Duration

	// BaselinePause is the inter-call delay of the baseline scenario, a
	// self-imposed rate budget. The other scenarios run back-to-back.
	BaselinePause time.Duration

	// OrderDefectRate is the fraction of trigger-orders payloads that omit
	// payment_method, reproducing the known client defect.
	OrderDefectRate float64

	Logger *slog.Logger
}

// Result echoes what was asked of a burst. Per-call outcomes are deliberately
// not aggregated.
type Result struct {
	Scenario string `json:"scenario"`
	Requests int    `json:"requests"`
}

// Driver issues bursts of N sequential HTTP calls per scenario. It tolerates
// every per-call failure: a burst always completes all N iterations and
// reports the originally requested count.
type Driver struct {
	baseURL    string
	client     *http.Client
	pause      time.Duration
	defectRate float64
	log        *slog.Logger
}

// New creates a Driver, filling unset Config fields with the documented
// defaults (10s call timeout, 100ms baseline pause, 30% order defect rate).
func New(cfg Config) *Driver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaselinePause <= 0 {
		cfg.BaselinePause = defaultBaselinePause
	}
	if cfg.OrderDefectRate <= 0 {
		cfg.OrderDefectRate = defaultOrderDefectRate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 16

	return &Driver{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		client:     &http.Client{Timeout: cfg.Timeout, Transport: t},
		pause:      cfg.BaselinePause,
		defectRate: cfg.OrderDefectRate,
		log:        cfg.Logger,
	}
}

type target struct {
	path  string
	query url.Values
}

var baselineTargets = []target{
	{path: "/"},
	{path: "/catalog"},
	{path: "/product/123"},
	{path: "/checkout", query: url.Values{"mode": {"normal"}}},
}

// Baseline spreads n calls uniformly across the main storefront routes,
// pausing briefly after each call.
func (d *Driver) Baseline(ctx context.Context, n int) Result {
	return d.run(ctx, "baseline", n, func(ctx context.Context) {
		t := baselineTargets[rand.Intn(len(baselineTargets))]
		d.fire(ctx, http.MethodGet, t.path, t.query, nil)
		d.wait(ctx, d.pause)
	})
}

// CheckoutErrorSpike hammers checkout in its always-failing mode.
func (d *Driver) CheckoutErrorSpike(ctx context.Context, n int) Result {
	q := url.Values{"mode": {"error"}}
	return d.run(ctx, "checkout-error-spike", n, func(ctx context.Context) {
		d.fire(ctx, http.MethodGet, "/checkout", q, nil)
	})
}

// CheckoutLatencySpike hammers checkout in its 4x-slow mode.
func (d *Driver) CheckoutLatencySpike(ctx context.Context, n int) Result {
	q := url.Values{"mode": {"slow"}}
	return d.run(ctx, "checkout-latency-spike", n, func(ctx context.Context) {
		d.fire(ctx, http.MethodGet, "/checkout", q, nil)
	})
}

// TriggerOrders posts order payloads, omitting the required payment_method
// field at the configured defect rate.
func (d *Driver) TriggerOrders(ctx context.Context, n int) Result {
	return d.run(ctx, "trigger-orders", n, func(ctx context.Context) {
		payload := map[string]any{"items": []int{1, 2, 3}}
		if rand.Float64() >= d.defectRate {
			payload["payment_method"] = "credit_card"
		}
		d.fire(ctx, http.MethodPost, "/api/orders", nil, payload)
	})
}

// InventoryTimeouts polls one fixed SKU often enough to surface the inventory
// timeout path.
func (d *Driver) InventoryTimeouts(ctx context.Context, n int) Result {
	return d.run(ctx, "inventory-timeouts", n, func(ctx context.Context) {
		d.fire(ctx, http.MethodGet, "/api/inventory/"+timeoutSKU, nil, nil)
	})
}

// run executes one burst: n strictly sequential calls under one span, with
// lifecycle logs. It never returns early; the result always echoes n.
func (d *Driver) run(ctx context.Context, name string, n int, call func(context.Context)) Result {
	runID := uuid.NewString()

	tr := otel.Tracer("demo-shop/scenario")
	ctx, span := tr.Start(ctx, "scenario "+name)
	defer span.End()
	span.SetAttributes(
		attribute.String("scenario", name),
		attribute.Int("requests", n),
		attribute.String("run_id", runID),
	)

	d.log.Info("scenario burst started", "scenario", name, "requests", n, "run_id", runID)
	start := time.Now()

	for i := 0; i < n; i++ {
		call(ctx)
	}

	d.log.Info("scenario burst finished",
		"scenario", name, "requests", n, "run_id", runID, "elapsed", time.Since(start))

	return Result{Scenario: name, Requests: n}
}

// fire issues exactly one call. Transport errors, timeouts, and error statuses
// are logged at debug and otherwise discarded; no retry, no propagation.
func (d *Driver) fire(ctx context.Context, method, path string, query url.Values, body any) {
	u := d.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			d.log.Debug("dropping call with unencodable body", "path", path, "err", err)
			return
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		d.log.Debug("dropping malformed call", "path", path, "err", err)
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Debug("scenario call failed", "method", method, "path", path, "err", err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.log.Debug("scenario call returned error status",
			"method", method, "path", path, "status", resp.StatusCode)
	}
}

// wait sleeps for delay or until ctx is canceled.
func (d *Driver) wait(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
