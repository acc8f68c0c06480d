package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsOutcomes(t *testing.T) {
	c := NewCollector()

	c.VerificationRecorded("ACEPTADO")
	c.VerificationRecorded("ACEPTADO")
	c.VerificationRecorded("RECHAZADO")
	c.ExtraTripRecorded(false)
	c.WindowServed(12)
	c.EventPublished(errors.New("nats: timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Verifications.WithLabelValues("ACEPTADO")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Verifications.WithLabelValues("RECHAZADO")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ExtraTrips.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WindowQueries))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EventPublishErrs))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.VerificationRecorded("ACEPTADO")
		c.ExtraTripRecorded(true)
		c.WindowServed(1)
		c.DBError("verify")
		c.EventPublished(nil)
		c.EventsSetConnected(true)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	c := NewCollector()
	c.DBError("window")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `terminal_db_errors_total{op="window"} 1`)
}
