package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
		m.SaleRegistered("CASH", decimal.NewFromInt(35))
		m.SaleFailed("integrity")
		m.CashOpened()
		m.CashClosed(decimal.Zero)
		m.CacheResult("hit")
		m.JobProcessed("commission_recalc", "ok")
	})
}

func TestSaleRegistered_CountsByMethod(t *testing.T) {
	m := New()
	m.SaleRegistered("CASH", decimal.RequireFromString("35.00"))
	m.SaleRegistered("CASH", decimal.RequireFromString("15.50"))
	m.SaleRegistered("PIX", decimal.RequireFromString("10.00"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesTotal.WithLabelValues("CASH")))
	assert.Equal(t, 50.5, testutil.ToFloat64(m.salesAmount.WithLabelValues("CASH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.salesTotal.WithLabelValues("PIX")))
}

func TestObserveHTTP_ServerErrorsCounted(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST", "/v1/service-records", 500, 10*time.Millisecond)
	m.ObserveHTTP("POST", "/v1/service-records", 201, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorTotal.WithLabelValues("POST", "/v1/service-records")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("POST", "/v1/service-records", "201")))
}
