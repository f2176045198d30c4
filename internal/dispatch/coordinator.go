// Package dispatch owns the bus / queue entry / trip state machine.
//
// Every mutation runs in a single database transaction and locks the rows it
// transitions (SELECT ... FOR UPDATE), so a bus can never be double-booked and
// a failure in any step leaves bus, queue and trip state exactly as they were.
//
//	Bus:        Available|active --StartTrip--> In Transit --EndTrip--> active
//	Trip:       Running --EndTrip--> Completed
//	QueueEntry: queued --MarkDeparted--> departed
package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

// Metrics receives dispatch counters. *metrics.Collector implements it.
type Metrics interface {
	TripStarted()
	TripEnded()
	QueueTransition(action string)
	Failure(op, kind string)
	Observe(op string, d time.Duration)
}

// Publisher sends domain events after a transition commits.
type Publisher interface {
	Publish(subject string, payload any) error
}

type Coordinator struct {
	db      *gorm.DB
	now     func() time.Time
	loc     *time.Location
	metrics Metrics
	events  Publisher
}

type Option func(*Coordinator)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLocation sets the time zone that decides a trip's calendar day.
func WithLocation(loc *time.Location) Option {
	return func(c *Coordinator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.events = p }
}

func New(db *gorm.DB, opts ...Option) *Coordinator {
	c := &Coordinator{
		db:      db,
		now:     time.Now,
		loc:     time.UTC,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location is the zone used for calendar-day grouping.
func (c *Coordinator) Location() *time.Location { return c.loc }

// run executes fn in a transaction and records the outcome.
func (c *Coordinator) run(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	err := c.db.WithContext(ctx).Transaction(fn)
	c.metrics.Observe(op, time.Since(start))
	if err != nil {
		err = apperr.FromDB(err, "Record not found")
		c.metrics.Failure(op, apperr.KindOf(err).String())
	}
	return err
}

func (c *Coordinator) publish(subject string, payload any) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(subject, payload); err != nil {
		logrus.WithError(err).WithField("subject", subject).Warn("dispatch: event publish failed")
	}
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func lockBus(tx *gorm.DB, busID string) (*models.Bus, error) {
	var bus models.Bus
	if err := forUpdate(tx).Where("bus_id = ?", busID).Take(&bus).Error; err != nil {
		return nil, apperr.FromDB(err, "Bus not found")
	}
	return &bus, nil
}

func lockQueueEntry(tx *gorm.DB, id string) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := forUpdate(tx).Where("id = ?", id).Take(&entry).Error; err != nil {
		return nil, apperr.FromDB(err, "Queue entry not found")
	}
	return &entry, nil
}

func lockTrip(tx *gorm.DB, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := forUpdate(tx).Where("id = ?", id).Take(&trip).Error; err != nil {
		return nil, apperr.FromDB(err, "Trip not found")
	}
	return &trip, nil
}

type nopMetrics struct{}

func (nopMetrics) TripStarted()                  {}
func (nopMetrics) TripEnded()                    {}
func (nopMetrics) QueueTransition(string)        {}
func (nopMetrics) Failure(string, string)        {}
func (nopMetrics) Observe(string, time.Duration) {}
