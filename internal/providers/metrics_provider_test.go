package providers

import (
	"epd/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHttpStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", httpStatusBucket(100))
	assert.Equal(t, "2xx", httpStatusBucket(201))
	assert.Equal(t, "3xx", httpStatusBucket(304))
	assert.Equal(t, "4xx", httpStatusBucket(404))
	assert.Equal(t, "5xx", httpStatusBucket(500))
}

func TestNewMetricsProvider_DisabledReturnsNoop(t *testing.T) {
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: false}}
	m := NewMetricsProvider(conf)

	_, isNoop := m.(*noopMetrics)
	assert.True(t, isNoop)

	// all methods must be safe on the noop implementation
	m.IncRequestsTotal("/profile", 200)
	m.ObserveRequestDuration("/profile", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.SetProfilesTotal(3)
	m.SetUsageEventsTotal(5)
	m.SetStorageProbeDuration(time.Millisecond)
}
