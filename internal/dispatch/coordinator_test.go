package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/events"
	"bus_dispatch/internal/metrics"
	"bus_dispatch/internal/models"
	tu "bus_dispatch/internal/testutil"
)

var day0 = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

type fixture struct {
	db      *gorm.DB
	c       *Coordinator
	pub     *recordingPublisher
	metrics *metrics.Collector
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		db:      tu.NewDB(t),
		pub:     &recordingPublisher{},
		metrics: metrics.NewCollector(),
	}
	base := []Option{
		WithClock(tu.StepClock(day0, time.Minute)),
		WithPublisher(f.pub),
		WithMetrics(f.metrics),
	}
	f.c = New(f.db, append(base, opts...)...)
	return f
}

func (f *fixture) addBus(t *testing.T, id string, status models.BusStatus) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Bus{
		BusID:   id,
		Route:   "R1",
		OwnerID: "OWN001",
		Status:  status,
	}).Error)
}

func (f *fixture) bus(t *testing.T, id string) models.Bus {
	t.Helper()
	var b models.Bus
	require.NoError(t, f.db.Where("bus_id = ?", id).Take(&b).Error)
	return b
}

func f64(v float64) *float64 { return &v }

func TestDispatchScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS007", models.BusAvailable)

	entry, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS007", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)
	assert.Equal(t, models.QueueQueued, entry.Status)
	assert.Nil(t, entry.DepartedAt)
	assert.Equal(t, models.BusAvailable, f.bus(t, "BUS007").Status, "enqueue must not touch bus status")

	departed, err := f.c.MarkDeparted(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueDeparted, departed.Status)
	require.NotNil(t, departed.DepartedAt)
	assert.False(t, departed.DepartedAt.Before(departed.QueuedAt))

	trip, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS007", StarterID: "STR001", StarterStationID: "T1"})
	require.NoError(t, err)
	assert.Equal(t, "TRIP_20261018_001", trip.ID)
	assert.Equal(t, models.TripRunning, trip.Status)
	assert.Equal(t, models.BusInTransit, f.bus(t, "BUS007").Status)

	var linked models.QueueEntry
	require.NoError(t, f.db.Where("id = ?", entry.ID).Take(&linked).Error)
	require.NotNil(t, linked.TripID)
	assert.Equal(t, trip.ID, *linked.TripID)
	require.NotNil(t, trip.QueueEntryID)
	assert.Equal(t, entry.ID, *trip.QueueEntryID)

	ended, err := f.c.EndTrip(ctx, trip.ID, EndTripInput{TicketSales: f64(500), Expenses: f64(100)})
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, ended.Status)
	assert.Equal(t, 400.0, ended.Profit)
	require.NotNil(t, ended.EndedAt)
	assert.True(t, ended.EndedAt.After(ended.CreatedAt))
	assert.Equal(t, models.BusActive, f.bus(t, "BUS007").Status)

	var earning models.Earning
	require.NoError(t, f.db.Where("trip_id = ?", trip.ID).Take(&earning).Error)
	assert.Equal(t, "OWN001", earning.OwnerID)
	assert.Equal(t, 400.0, earning.Profit)

	assert.Equal(t, []string{
		events.SubjectQueueEnqueued,
		events.SubjectQueueDeparted,
		events.SubjectTripStarted,
		events.SubjectTripEnded,
	}, f.pub.subjects)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TripsStarted))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.RunningTrips))
}

func TestStartTripRejectsBusInTransit(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "BUS001", models.BusInTransit)

	_, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Contains(t, err.Error(), "Current status: In Transit")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransitionFailures.WithLabelValues("start_trip", "invalid_state")))
}

func TestStartTripRejectsNonDispatchableStatuses(t *testing.T) {
	for _, status := range []models.BusStatus{models.BusInactive, "maintenance", ""} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			f.addBus(t, "BUS001", status)
			_, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
			assert.True(t, apperr.Is(err, apperr.KindInvalidState))
		})
	}
}

func TestStartTripAcceptsActiveBus(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "BUS001", models.BusActive)

	trip, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)
	assert.Equal(t, "R1", trip.Route, "route defaults to the bus route")
	assert.Nil(t, trip.QueueEntryID)
}

func TestStartTripUnknownBus(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS404"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.c.StartTrip(context.Background(), StartTripInput{BusID: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestEndTripTwiceDoesNotTouchBusAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)

	trip, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)
	_, err = f.c.EndTrip(ctx, trip.ID, EndTripInput{TicketSales: f64(10)})
	require.NoError(t, err)

	_, err = f.c.SetBusStatus(ctx, "BUS001", models.BusInactive)
	require.NoError(t, err)

	_, err = f.c.EndTrip(ctx, trip.ID, EndTripInput{TicketSales: f64(99)})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Contains(t, err.Error(), "already completed")
	assert.Equal(t, models.BusInactive, f.bus(t, "BUS001").Status)

	stored, err := f.c.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stored.TicketSales, "completed trips are immutable")

	var earnings int64
	require.NoError(t, f.db.Model(&models.Earning{}).Count(&earnings).Error)
	assert.Equal(t, int64(1), earnings)
}

func TestEndTripValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.EndTrip(context.Background(), "TRIP_20261018_001", EndTripInput{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.c.EndTrip(context.Background(), "TRIP_20261018_001", EndTripInput{Expenses: f64(-1)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestTripIDsAreScopedPerDay(t *testing.T) {
	now := day0
	f := newFixture(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	for _, id := range []string{"BUS001", "BUS002", "BUS003"} {
		f.addBus(t, id, models.BusAvailable)
	}

	t1, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)
	t2, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS002"})
	require.NoError(t, err)
	now = day0.Add(24 * time.Hour)
	t3, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS003"})
	require.NoError(t, err)

	assert.Equal(t, "TRIP_20261018_001", t1.ID)
	assert.Equal(t, "TRIP_20261018_002", t2.ID)
	assert.Equal(t, "TRIP_20261019_001", t3.ID)
}

func TestTripIDDayFollowsLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	late := time.Date(2026, 10, 18, 22, 30, 0, 0, time.UTC) // 01:30 next day in EAT
	f := newFixture(t, WithClock(func() time.Time { return late }), WithLocation(nairobi))
	f.addBus(t, "BUS001", models.BusAvailable)

	trip, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)
	assert.Equal(t, "TRIP_20261019_001", trip.ID)
}

func TestTripIDContinuesFromExistingTrips(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "BUS001", models.BusAvailable)
	require.NoError(t, f.db.Create(&models.Trip{ID: "TRIP_20261018_005", BusID: "BUS009", Status: models.TripCompleted, CreatedAt: day0}).Error)

	trip, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)
	assert.Equal(t, "TRIP_20261018_006", trip.ID)
}

func TestStartTripRollsBackOnIDCollision(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "BUS001", models.BusAvailable)
	// A counter that lags behind the stored trips forces a duplicate key.
	require.NoError(t, f.db.Create(&models.Sequence{Scope: "trip:20261018", Value: 0}).Error)
	require.NoError(t, f.db.Create(&models.Trip{ID: "TRIP_20261018_001", BusID: "BUS009", Status: models.TripRunning, CreatedAt: day0}).Error)

	_, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.Equal(t, models.BusAvailable, f.bus(t, "BUS001").Status)
	var seq models.Sequence
	require.NoError(t, f.db.Where("scope = ?", "trip:20261018").Take(&seq).Error)
	assert.Equal(t, 0, seq.Value, "counter increment rolled back with the trip")
}

func TestConcurrentStartsGetDistinctIDs(t *testing.T) {
	f := newFixture(t, WithClock(func() time.Time { return day0 }))
	const n = 8
	for i := 1; i <= n; i++ {
		f.addBus(t, fmt.Sprintf("BUS%03d", i), models.BusAvailable)
	}

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trip, err := f.c.StartTrip(context.Background(), StartTripInput{BusID: fmt.Sprintf("BUS%03d", i+1)})
			errs[i] = err
			if err == nil {
				ids[i] = trip.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate trip id %s", ids[i])
		seen[ids[i]] = true
	}
	assert.Len(t, seen, n)
}

func TestConcurrentStartsOnSameBusOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.addBus(t, "BUS001", models.BusAvailable)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.c.StartTrip(context.Background(), StartTripInput{BusID: "BUS001"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	}
	assert.Equal(t, 1, wins)

	var running int64
	require.NoError(t, f.db.Model(&models.Trip{}).Where("bus_id = ?", "BUS001").Count(&running).Error)
	assert.Equal(t, int64(1), running)
}

func TestStartTripWithExplicitQueueEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)
	f.addBus(t, "BUS002", models.BusAvailable)

	other, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS002", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)
	own, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)

	_, err = f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001", QueueEntryID: other.ID})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState), "entry of another bus")

	_, err = f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001", QueueEntryID: own.ID})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState), "entry still queued")
	assert.Equal(t, models.BusAvailable, f.bus(t, "BUS001").Status)

	_, err = f.c.MarkDeparted(ctx, own.ID)
	require.NoError(t, err)
	trip, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001", QueueEntryID: own.ID})
	require.NoError(t, err)
	require.NotNil(t, trip.QueueEntryID)
	assert.Equal(t, own.ID, *trip.QueueEntryID)
}

func TestEnqueueRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)
	f.addBus(t, "BUS002", models.BusInTransit)

	_, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS404", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS002", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	_, err = f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)
	_, err = f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1", TimeslotID: "10AM"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T2", TimeslotID: "10AM"})
	assert.NoError(t, err, "a different terminal is a separate queue")

	t1, err := f.c.ListQueue(ctx, "T1")
	require.NoError(t, err)
	assert.Len(t, t1, 1)
	all, err := f.c.ListQueue(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkDepartedRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)

	_, err := f.c.MarkDeparted(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	entry, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)
	first, err := f.c.MarkDeparted(ctx, entry.ID)
	require.NoError(t, err)

	_, err = f.c.MarkDeparted(ctx, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	var stored models.QueueEntry
	require.NoError(t, f.db.Where("id = ?", entry.ID).Take(&stored).Error)
	require.NotNil(t, stored.DepartedAt)
	assert.True(t, stored.DepartedAt.Equal(*first.DepartedAt), "departure time is not re-stamped")

	// Departed entries can be queued again afterwards.
	_, err = f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1", TimeslotID: "11AM"})
	assert.NoError(t, err)
}

func TestRemoveFromQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)

	entry, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS001", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)
	_, err = f.c.MarkDeparted(ctx, entry.ID)
	require.NoError(t, err)
	_, err = f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)

	err = f.c.RemoveFromQueue(ctx, entry.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	assert.True(t, apperr.Is(f.c.RemoveFromQueue(ctx, "missing"), apperr.KindNotFound))

	f.addBus(t, "BUS002", models.BusAvailable)
	loose, err := f.c.EnqueueBus(ctx, EnqueueInput{BusID: "BUS002", RouteID: "R1", TerminalID: "T1", TimeslotID: "9AM"})
	require.NoError(t, err)
	require.NoError(t, f.c.RemoveFromQueue(ctx, loose.ID))
}

func TestSetBusStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)
	f.addBus(t, "BUS002", models.BusInTransit)

	bus, err := f.c.SetBusStatus(ctx, "BUS001", models.BusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.BusInactive, bus.Status)

	_, err = f.c.SetBusStatus(ctx, "BUS001", "broken")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.c.SetBusStatus(ctx, "BUS001", models.BusInTransit)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	_, err = f.c.SetBusStatus(ctx, "BUS002", models.BusAvailable)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Equal(t, models.BusInTransit, f.bus(t, "BUS002").Status)

	_, err = f.c.SetBusStatus(ctx, "BUS404", models.BusActive)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteBus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBus(t, "BUS001", models.BusAvailable)
	f.addBus(t, "BUS002", models.BusAvailable)

	_, err := f.c.StartTrip(ctx, StartTripInput{BusID: "BUS001"})
	require.NoError(t, err)

	assert.True(t, apperr.Is(f.c.DeleteBus(ctx, "BUS001"), apperr.KindInvalidState))
	require.NoError(t, f.c.DeleteBus(ctx, "BUS002"))
	assert.True(t, apperr.Is(f.c.DeleteBus(ctx, "BUS002"), apperr.KindNotFound))
}
