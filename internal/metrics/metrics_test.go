package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCountsTrips(t *testing.T) {
	c := NewCollector()

	c.TripStarted()
	c.TripStarted()
	c.TripEnded()
	c.QueueTransition("enqueued")
	c.Failure("start_trip", "invalid_state")
	c.Observe("start_trip", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.TripsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TripsEnded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RunningTrips))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QueueEntries.WithLabelValues("enqueued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TransitionFailures.WithLabelValues("start_trip", "invalid_state")))
}
