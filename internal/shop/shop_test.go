package shop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroed returns a contract with no latency and no failures so tests can
// flip on exactly the behavior under test.
func zeroed() Config {
	return Config{CheckoutSlowFactor: 4}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []string{ModeNormal, ModeSlow, ModeError} {
		assert.True(t, ValidMode(mode), "mode %q should be valid", mode)
	}
	for _, mode := range []string{"", "fast", "NORMAL", "errors"} {
		assert.False(t, ValidMode(mode), "mode %q should be invalid", mode)
	}
}

func TestHome(t *testing.T) {
	s := New(zeroed())

	data, err := s.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HomeData{Status: "ok", Service: "demo-shop"}, data)
}

func TestCatalog(t *testing.T) {
	s := New(zeroed())

	data, err := s.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"shirt", "shoes", "hat"}, data.Items)
	assert.Equal(t, 3, data.Total)
}

func TestCatalogFailure(t *testing.T) {
	cfg := zeroed()
	cfg.CatalogFailureRate = 1
	s := New(cfg)

	_, err := s.Catalog(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestProductDetail(t *testing.T) {
	s := New(zeroed())

	p, err := s.ProductDetail(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, Product{ID: 123, Name: "Product 123", Price: 42}, p)
}

func TestProductNotFound(t *testing.T) {
	cfg := zeroed()
	cfg.ProductNotFoundRate = 1
	s := New(cfg)

	_, err := s.ProductDetail(context.Background(), 7)
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Contains(t, err.Error(), "7")
}

func TestCheckoutErrorModeAlwaysFails(t *testing.T) {
	s := New(zeroed())

	for i := 0; i < 50; i++ {
		_, err := s.Checkout(context.Background(), ModeError)
		require.ErrorIs(t, err, ErrPaymentTokenMissing)
	}
}

func TestCheckoutReportsDrawnLatency(t *testing.T) {
	cfg := zeroed()
	cfg.CheckoutBase = Gauss{Mean: 20 * time.Millisecond}
	s := New(cfg)

	data, err := s.Checkout(context.Background(), ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, ModeNormal, data.Mode)
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, 0.02, data.LatencySeconds)

	data, err = s.Checkout(context.Background(), ModeSlow)
	require.NoError(t, err)
	assert.Equal(t, ModeSlow, data.Mode)
	assert.Equal(t, 0.08, data.LatencySeconds)
}

func TestCheckoutLatencyDraw(t *testing.T) {
	cfg := zeroed()
	cfg.CheckoutBase = Gauss{Mean: 200 * time.Millisecond}
	s := New(cfg)

	// With zero spread the draw is exact, so the slow multiplier is too.
	assert.Equal(t, 200*time.Millisecond, s.checkoutLatency(ModeNormal))
	assert.Equal(t, 800*time.Millisecond, s.checkoutLatency(ModeSlow))
}

func TestCheckoutLatencyDistribution(t *testing.T) {
	g := Gauss{Mean: 200 * time.Millisecond, SD: 60 * time.Millisecond, Min: 50 * time.Millisecond}

	const n = 20000
	var sum time.Duration
	for i := 0; i < n; i++ {
		d := g.draw()
		require.GreaterOrEqual(t, d, 50*time.Millisecond, "draw below clamp floor")
		sum += d
	}
	mean := sum / n
	assert.InDelta(t, float64(200*time.Millisecond), float64(mean), float64(15*time.Millisecond),
		"sample mean drifted from configured mean")
}

func TestGaussClampFloor(t *testing.T) {
	g := Gauss{Mean: 10 * time.Millisecond, Min: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, g.draw())
}

func TestCreateOrderValidation(t *testing.T) {
	card := "credit_card"
	paypal := "paypal"
	bitcoin := "bitcoin"

	tests := []struct {
		name    string
		method  *string
		wantErr error
	}{
		{"missing method", nil, ErrPaymentMethodMissing},
		{"invalid method", &bitcoin, ErrPaymentMethodInvalid},
		{"credit card", &card, nil},
		{"paypal", &paypal, nil},
	}

	s := New(zeroed())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := s.CreateOrder(context.Background(), tt.method)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "created", order.Status)
			assert.GreaterOrEqual(t, order.OrderID, 1000)
			assert.LessOrEqual(t, order.OrderID, 9999)
		})
	}
}

func TestCreateOrderRejectsBeforeSleeping(t *testing.T) {
	cfg := zeroed()
	cfg.OrderLatency = Range{Min: time.Hour, Max: time.Hour}
	s := New(cfg)

	start := time.Now()
	_, err := s.CreateOrder(context.Background(), nil)
	require.ErrorIs(t, err, ErrPaymentMethodMissing)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "validation should not pay the order latency")
}

func TestCreateOrderInvalidMethodNamesValue(t *testing.T) {
	s := New(zeroed())
	bad := "wire_transfer"

	_, err := s.CreateOrder(context.Background(), &bad)
	require.ErrorIs(t, err, ErrPaymentMethodInvalid)
	assert.Contains(t, err.Error(), `"wire_transfer"`)
}

func TestCheckInventory(t *testing.T) {
	s := New(zeroed())

	inv, err := s.CheckInventory(context.Background(), "SKU123")
	require.NoError(t, err)
	assert.Equal(t, "SKU123", inv.SKU)
	assert.GreaterOrEqual(t, inv.Available, 0)
	assert.LessOrEqual(t, inv.Available, 100)
}

func TestCheckInventoryTimeoutRate(t *testing.T) {
	cfg := zeroed()
	cfg.InventoryTimeoutRate = 0.03
	s := New(cfg)

	const n = 10000
	timeouts := 0
	for i := 0; i < n; i++ {
		if _, err := s.CheckInventory(context.Background(), "SKU123"); err != nil {
			require.ErrorIs(t, err, ErrInventoryTimeout)
			timeouts++
		}
	}
	frac := float64(timeouts) / n
	assert.InDelta(t, 0.03, frac, 0.01, "timeout rate off contract")
}

func TestProcessRefund(t *testing.T) {
	s := New(zeroed())

	ref, err := s.ProcessRefund(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "processed", ref.Status)
	require.True(t, strings.HasPrefix(ref.RefundID, "REF-"), "refund id %q", ref.RefundID)
	assert.Len(t, ref.RefundID, len("REF-")+5)
}

func TestProcessRefundFailure(t *testing.T) {
	cfg := zeroed()
	cfg.RefundFailureRate = 1
	s := New(cfg)

	_, err := s.ProcessRefund(context.Background())
	assert.ErrorIs(t, err, ErrProcessorUnavailable)
}

func TestGetRecommendations(t *testing.T) {
	s := New(zeroed())

	recs, err := s.GetRecommendations(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, recs.UserID)
	assert.Equal(t, []string{"product_0", "product_1", "product_2", "product_3", "product_4"}, recs.Recommendations)
}

func TestClearCache(t *testing.T) {
	s := New(zeroed())

	status, err := s.ClearCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cache cleared", status.Status)
}

func TestClearCacheDenied(t *testing.T) {
	cfg := zeroed()
	cfg.CacheDenyRate = 1
	s := New(cfg)

	_, err := s.ClearCache(context.Background())
	assert.ErrorIs(t, err, ErrCacheForbidden)
}

func TestSleepHonorsCancellation(t *testing.T) {
	cfg := zeroed()
	cfg.HomeLatency = Range{Min: time.Hour, Max: time.Hour}
	s := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := s.Home(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestUniformStaysInRange(t *testing.T) {
	r := Range{Min: 20 * time.Millisecond, Max: 80 * time.Millisecond}
	for i := 0; i < 1000; i++ {
		d := uniform(r)
		require.GreaterOrEqual(t, d, r.Min)
		require.LessOrEqual(t, d, r.Max)
	}
}

func TestDefaultConfigContract(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, Range{20 * time.Millisecond, 80 * time.Millisecond}, cfg.HomeLatency)
	assert.Equal(t, 0.01, cfg.CatalogFailureRate)
	assert.Equal(t, 0.02, cfg.ProductNotFoundRate)
	assert.Equal(t, 4, cfg.CheckoutSlowFactor)
	assert.Equal(t, 0.03, cfg.InventoryTimeoutRate)
	assert.Equal(t, 5*time.Second, cfg.InventoryTimeoutDelay)
	assert.Equal(t, 0.05, cfg.RefundFailureRate)
	assert.Equal(t, 0.10, cfg.CacheDenyRate)
}
