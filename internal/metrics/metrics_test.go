package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRemote("list_orders", time.Now(), nil)
	m.ObserveRemote("list_orders", time.Now(), errors.New("boom"))
	m.TokenRefreshed(nil)
	m.Superseded("reception")
	m.Superseded("reception")
	m.PriceLookup("missing")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteRequests.WithLabelValues("list_orders", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteRequests.WithLabelValues("list_orders", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenRefreshes.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.superseded.WithLabelValues("reception")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.priceLookups.WithLabelValues("missing")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRemote("x", time.Now(), nil)
		m.TokenRefreshed(nil)
		m.Superseded("x")
		m.PriceLookup("found")
	})
}
