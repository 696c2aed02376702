package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	SetStoreRecords("models", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(storeRecords.WithLabelValues("models")))

	before := testutil.ToFloat64(rateLimitRejections.WithLabelValues("upload"))
	RateLimitRejected("upload")
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimitRejections.WithLabelValues("upload")))

	before = testutil.ToFloat64(upstreamFailures.WithLabelValues("ipfs", "unavailable"))
	UpstreamFailed("ipfs", "unavailable")
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamFailures.WithLabelValues("ipfs", "unavailable")))
}

func TestRequestLifecycle(t *testing.T) {
	RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(httpInFlight))

	RequestFinished("GET", "", "404", 0.01)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	SetStoreRecords("transactions", 7)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `tritue_market_store_records{collection="transactions"} 7`)
}
