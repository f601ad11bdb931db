package shop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Deliberate failure taxonomy. Every error here is simulated on purpose so the
// handlers can surface varied 4xx/5xx telemetry.
var (
	ErrCatalogUnavailable   = errors.New("catalog service temporarily unavailable")
	ErrProductNotFound      = errors.New("product not found")
	ErrPaymentTokenMissing  = errors.New("checkout failed: payment token missing")
	ErrPaymentMethodMissing = errors.New("payment_method is required")
	ErrPaymentMethodInvalid = errors.New("invalid payment method")
	ErrInventoryTimeout     = errors.New("inventory database timeout")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
	ErrCacheForbidden       = errors.New("insufficient permissions")
)

// Checkout modes.
const (
	ModeNormal = "normal"
	ModeSlow   = "slow"
	ModeError  = "error"
)

// ValidMode reports whether mode names a supported checkout mode.
func ValidMode(mode string) bool {
	return mode == ModeNormal || mode == ModeSlow || mode == ModeError
}

const serviceName = "demo-shop"

var catalogItems = []string{"shirt", "shoes", "hat"}

// Range bounds a uniform latency draw.
type Range struct {
	Min, Max time.Duration
}

// Gauss describes the clamped normal draw used by checkout.
type Gauss struct {
	Mean, SD, Min time.Duration
}

// Config carries the latency distributions and failure probabilities of every
// simulated operation. The defaults are the demo's documented contract; they
// drive the telemetry shape and must not be eyeballed away.
type Config struct {
	HomeLatency Range

	CatalogLatency     Range
	CatalogFailureRate float64

	ProductLatency      Range
	ProductNotFoundRate float64

	// Checkout sleeps Setup in every mode, then fails in mode=error or sleeps
	// the gaussian base (times SlowFactor in mode=slow).
	CheckoutSetup      Range
	CheckoutBase       Gauss
	CheckoutSlowFactor int

	OrderLatency Range

	InventoryLatency      Range
	InventoryTimeoutRate  float64
	InventoryTimeoutDelay time.Duration

	RefundLatency     Range
	RefundFailureRate float64

	RecommendationLatency Range

	CacheLatency  time.Duration
	CacheDenyRate float64
}

// DefaultConfig returns the documented demo contract.
func DefaultConfig() Config {
	return Config{
		HomeLatency: Range{20 * time.Millisecond, 80 * time.Millisecond},

		CatalogLatency:     Range{50 * time.Millisecond, 150 * time.Millisecond},
		CatalogFailureRate: 0.01,

		ProductLatency:      Range{30 * time.Millisecond, 120 * time.Millisecond},
		ProductNotFoundRate: 0.02,

		CheckoutSetup:      Range{50 * time.Millisecond, 150 * time.Millisecond},
		CheckoutBase:       Gauss{Mean: 200 * time.Millisecond, SD: 60 * time.Millisecond, Min: 50 * time.Millisecond},
		CheckoutSlowFactor: 4,

		OrderLatency: Range{100 * time.Millisecond, 300 * time.Millisecond},

		InventoryLatency:      Range{50 * time.Millisecond, 200 * time.Millisecond},
		InventoryTimeoutRate:  0.03,
		InventoryTimeoutDelay: 5 * time.Second,

		RefundLatency:     Range{200 * time.Millisecond, 500 * time.Millisecond},
		RefundFailureRate: 0.05,

		RecommendationLatency: Range{300 * time.Millisecond, 1500 * time.Millisecond},

		CacheLatency:  50 * time.Millisecond,
		CacheDenyRate: 0.10,
	}
}

// Shop is the simulated endpoint set. Every operation is stateless: it draws a
// latency, optionally draws a failure, and returns a canned payload.
type Shop struct {
	cfg Config
}

// New creates a Shop with the given contract.
func New(cfg Config) *Shop { return &Shop{cfg: cfg} }

type HomeData struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type CatalogData struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

type Product struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type CheckoutData struct {
	Status         string  `json:"status"`
	Mode           string  `json:"mode"`
	LatencySeconds float64 `json:"latency_s"`
}

type Order struct {
	OrderID int    `json:"order_id"`
	Status  string `json:"status"`
}

type Inventory struct {
	SKU       string `json:"sku"`
	Available int    `json:"available"`
}

type Refund struct {
	RefundID string `json:"refund_id"`
	Status   string `json:"status"`
}

type Recommendations struct {
	UserID          int      `json:"user_id"`
	Recommendations []string `json:"recommendations"`
}

type CacheStatus struct {
	Status string `json:"status"`
}

// Home simulates the storefront landing page. Fast, never fails.
func (s *Shop) Home(ctx context.Context) (HomeData, error) {
	if err := s.sleep(ctx, uniform(s.cfg.HomeLatency)); err != nil {
		return HomeData{}, err
	}
	return HomeData{Status: "ok", Service: serviceName}, nil
}

// Catalog simulates the product listing.
// - 50–150ms latency
// - 1% transient failure
func (s *Shop) Catalog(ctx context.Context) (CatalogData, error) {
	if err := s.sleep(ctx, uniform(s.cfg.CatalogLatency)); err != nil {
		return CatalogData{}, err
	}
	if roll(s.cfg.CatalogFailureRate) {
		return CatalogData{}, ErrCatalogUnavailable
	}
	return CatalogData{Items: catalogItems, Total: len(catalogItems)}, nil
}

// ProductDetail simulates a product DB lookup.
// - 30–120ms latency
// - 2% not-found
func (s *Shop) ProductDetail(ctx context.Context, id int) (Product, error) {
	if err := s.sleep(ctx, uniform(s.cfg.ProductLatency)); err != nil {
		return Product{}, err
	}
	if roll(s.cfg.ProductNotFoundRate) {
		return Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return Product{ID: id, Name: fmt.Sprintf("Product %d", id), Price: 42}, nil
}

// Checkout simulates the payment flow. All modes pay the setup delay first;
// mode=error then always fails with a missing payment token, the other modes
// sleep a clamped gaussian base (x4 in mode=slow) and report it as latency_s.
func (s *Shop) Checkout(ctx context.Context, mode string) (CheckoutData, error) {
	if err := s.sleep(ctx, uniform(s.cfg.CheckoutSetup)); err != nil {
		return CheckoutData{}, err
	}
	if mode == ModeError {
		return CheckoutData{}, ErrPaymentTokenMissing
	}
	base := s.checkoutLatency(mode)
	if err := s.sleep(ctx, base); err != nil {
		return CheckoutData{}, err
	}
	return CheckoutData{Status: "ok", Mode: mode, LatencySeconds: round3(base.Seconds())}, nil
}

// checkoutLatency draws the checkout base latency for a mode.
func (s *Shop) checkoutLatency(mode string) time.Duration {
	base := s.cfg.CheckoutBase.draw()
	if mode == ModeSlow {
		base *= time.Duration(s.cfg.CheckoutSlowFactor)
	}
	return base
}

// CreateOrder validates the payment method and simulates order persistence.
// Validation is deterministic: a missing field or a method outside
// {credit_card, paypal} fails before any latency is paid.
func (s *Shop) CreateOrder(ctx context.Context, paymentMethod *string) (Order, error) {
	if paymentMethod == nil {
		return Order{}, ErrPaymentMethodMissing
	}
	switch *paymentMethod {
	case "credit_card", "paypal":
	default:
		return Order{}, fmt.Errorf("%w: %q", ErrPaymentMethodInvalid, *paymentMethod)
	}
	if err := s.sleep(ctx, uniform(s.cfg.OrderLatency)); err != nil {
		return Order{}, err
	}
	return Order{OrderID: 1000 + rand.Intn(9000), Status: "created"}, nil
}

// CheckInventory simulates a stock lookup.
// - 50–200ms latency
// - 3% of calls hang for an extra 5s and then fail with a timeout
func (s *Shop) CheckInventory(ctx context.Context, sku string) (Inventory, error) {
	if err := s.sleep(ctx, uniform(s.cfg.InventoryLatency)); err != nil {
		return Inventory{}, err
	}
	if roll(s.cfg.InventoryTimeoutRate) {
		if err := s.sleep(ctx, s.cfg.InventoryTimeoutDelay); err != nil {
			return Inventory{}, err
		}
		return Inventory{}, ErrInventoryTimeout
	}
	return Inventory{SKU: sku, Available: rand.Intn(101)}, nil
}

// ProcessRefund simulates a call to an external payment processor.
// - 200–500ms latency
// - 5% upstream failure
func (s *Shop) ProcessRefund(ctx context.Context) (Refund, error) {
	if err := s.sleep(ctx, uniform(s.cfg.RefundLatency)); err != nil {
		return Refund{}, err
	}
	if roll(s.cfg.RefundFailureRate) {
		return Refund{}, ErrProcessorUnavailable
	}
	return Refund{RefundID: fmt.Sprintf("REF-%d", 10000+rand.Intn(90000)), Status: "processed"}, nil
}

// GetRecommendations simulates ML model inference. Wide latency variance,
// never fails.
func (s *Shop) GetRecommendations(ctx context.Context, userID int) (Recommendations, error) {
	if err := s.sleep(ctx, uniform(s.cfg.RecommendationLatency)); err != nil {
		return Recommendations{}, err
	}
	recs := make([]string, 5)
	for i := range recs {
		recs[i] = fmt.Sprintf("product_%d", i)
	}
	return Recommendations{UserID: userID, Recommendations: recs}, nil
}

// ClearCache simulates an admin operation with a fixed cost.
// - 10% permission failure
func (s *Shop) ClearCache(ctx context.Context) (CacheStatus, error) {
	if err := s.sleep(ctx, s.cfg.CacheLatency); err != nil {
		return CacheStatus{}, err
	}
	if roll(s.cfg.CacheDenyRate) {
		return CacheStatus{}, ErrCacheForbidden
	}
	return CacheStatus{Status: "cache cleared"}, nil
}

// sleep blocks for d or until ctx is canceled.
func (s *Shop) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// uniform draws from [r.Min, r.Max].
func uniform(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int63n(int64(r.Max-r.Min)+1))
}

// draw samples the clamped normal distribution.
func (g Gauss) draw() time.Duration {
	d := g.Mean + time.Duration(rand.NormFloat64()*float64(g.SD))
	if d < g.Min {
		return g.Min
	}
	return d
}

// roll returns true with probability p.
func roll(p float64) bool {
	return p > 0 && rand.Float64() < p
}

func round3(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}
