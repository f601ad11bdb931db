package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demo-shop/internal/scenario"
)

// newBurstTarget is where scenario bursts land during tests. It only counts.
func newBurstTarget(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestScenarioEndpointEchoesBurst(t *testing.T) {
	stub, hits := newBurstTarget(t)
	srv := newTestServer(t, quietShop(), stub.URL)

	resp, body := do(t, http.MethodPost, srv.URL+"/scenario/baseline?requests=7", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"scenario":"baseline","requests":7}`, string(body))
	assert.Equal(t, int64(7), hits.Load())
}

func TestScenarioDefaultBurstSize(t *testing.T) {
	stub, hits := newBurstTarget(t)
	srv := newTestServer(t, quietShop(), stub.URL)

	resp, body := do(t, http.MethodPost, srv.URL+"/scenario/inventory-timeouts", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"scenario":"inventory-timeouts","requests":40}`, string(body))
	assert.Equal(t, int64(40), hits.Load())
}

func TestScenarioRejectsBadRequestsParam(t *testing.T) {
	stub, hits := newBurstTarget(t)
	srv := newTestServer(t, quietShop(), stub.URL)

	for _, raw := range []string{"abc", "-5", "1.5", ""} {
		t.Run("requests="+raw, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/scenario/baseline?requests="+raw, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), "requests must be a non-negative integer")
		})
	}
	assert.Equal(t, int64(0), hits.Load(), "rejected runs must not fire traffic")
}

func TestScenarioZeroRequests(t *testing.T) {
	stub, hits := newBurstTarget(t)
	srv := newTestServer(t, quietShop(), stub.URL)

	resp, body := do(t, http.MethodPost, srv.URL+"/scenario/trigger-orders?requests=0", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"scenario":"trigger-orders","requests":0}`, string(body))
	assert.Equal(t, int64(0), hits.Load())
}

func TestScenarioSucceedsWhenTargetIsDown(t *testing.T) {
	stub, _ := newBurstTarget(t)
	stub.Close()
	srv := newTestServer(t, quietShop(), stub.URL)

	resp, body := do(t, http.MethodPost, srv.URL+"/scenario/checkout-error-spike?requests=3", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "burst failures must not fail the run")
	assert.JSONEq(t, `{"scenario":"checkout-error-spike","requests":3}`, string(body))
}

func TestEveryScenarioRouteRegistered(t *testing.T) {
	stub, _ := newBurstTarget(t)
	srv := newTestServer(t, quietShop(), stub.URL)

	for name := range scenario.DefaultRequests {
		t.Run(name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/scenario/"+name+"?requests=1", "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, fmt.Sprintf(`{"scenario":%q,"requests":1}`, name), string(body))
		})
	}
}
