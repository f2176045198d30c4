package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/events"
	"bus_dispatch/internal/models"
	"bus_dispatch/internal/sequence"
)

// StartTripInput is what a starter submits when a bus leaves the terminal.
// QueueEntryID is optional; without it the bus's latest departed, unlinked
// queue entry (if any) is linked to the trip.
type StartTripInput struct {
	BusID            string
	DepartureTime    string
	Route            string
	DriverID         string
	ConductorID      string
	StarterID        string
	StarterStationID string
	QueueEntryID     string
}

// EndTripInput carries the end-of-trip figures. Nil figures stay zero.
type EndTripInput struct {
	ArrivalTime string
	TicketSales *float64
	Expenses    *float64
	Incentives  *float64
}

// StartTrip opens a Running trip and puts the bus In Transit, atomically.
func (c *Coordinator) StartTrip(ctx context.Context, in StartTripInput) (*models.Trip, error) {
	in.BusID = strings.TrimSpace(in.BusID)
	if in.BusID == "" {
		c.metrics.Failure("start_trip", apperr.KindValidation.String())
		return nil, apperr.Validation("busId is required")
	}

	var trip models.Trip
	err := c.run(ctx, "start_trip", func(tx *gorm.DB) error {
		bus, err := lockBus(tx, in.BusID)
		if err != nil {
			return err
		}
		if !bus.Status.Dispatchable() {
			return apperr.InvalidState("Bus is not available. Current status: %s", bus.Status)
		}

		entry, err := c.queueEntryForTrip(tx, bus.BusID, in.QueueEntryID)
		if err != nil {
			return err
		}

		now := c.now()
		id, err := sequence.Trips(now.In(c.loc)).Next(tx)
		if err != nil {
			return err
		}

		trip = models.Trip{
			ID:               id,
			BusID:            bus.BusID,
			DriverID:         firstNonEmpty(in.DriverID, bus.DriverID),
			ConductorID:      firstNonEmpty(in.ConductorID, bus.ConductorID),
			Route:            firstNonEmpty(in.Route, bus.Route),
			DepartureTime:    in.DepartureTime,
			StarterID:        in.StarterID,
			StarterStationID: in.StarterStationID,
			Status:           models.TripRunning,
			CreatedAt:        now,
		}
		if entry != nil {
			trip.QueueEntryID = &entry.ID
		}
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Bus{}).Where("bus_id = ?", bus.BusID).
			Update("status", models.BusInTransit).Error; err != nil {
			return err
		}

		if entry != nil {
			if err := tx.Model(&models.QueueEntry{}).Where("id = ?", entry.ID).
				Update("trip_id", trip.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.TripStarted()
	c.publish(events.SubjectTripStarted, trip)
	return &trip, nil
}

// queueEntryForTrip resolves the queue entry a new trip should be linked to.
func (c *Coordinator) queueEntryForTrip(tx *gorm.DB, busID, entryID string) (*models.QueueEntry, error) {
	if entryID == "" {
		var entry models.QueueEntry
		err := forUpdate(tx).
			Where("bus_id = ? AND status = ? AND trip_id IS NULL", busID, models.QueueDeparted).
			Order("departed_at DESC").
			Take(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &entry, nil
	}

	entry, err := lockQueueEntry(tx, entryID)
	if err != nil {
		return nil, err
	}
	switch {
	case entry.BusID != busID:
		return nil, apperr.InvalidState("Queue entry %s belongs to bus %s", entry.ID, entry.BusID)
	case entry.Status != models.QueueDeparted:
		return nil, apperr.InvalidState("Queue entry %s has not departed", entry.ID)
	case entry.TripID != nil:
		return nil, apperr.InvalidState("Queue entry %s is already linked to trip %s", entry.ID, *entry.TripID)
	}
	return entry, nil
}

// EndTrip completes a Running trip, returns its bus to active and records the
// earning, atomically. Completed trips are immutable.
func (c *Coordinator) EndTrip(ctx context.Context, tripID string, in EndTripInput) (*models.Trip, error) {
	for _, v := range []*float64{in.TicketSales, in.Expenses, in.Incentives} {
		if v != nil && *v < 0 {
			c.metrics.Failure("end_trip", apperr.KindValidation.String())
			return nil, apperr.Validation("ticketSales, expenses and incentives must not be negative")
		}
	}

	var trip *models.Trip
	err := c.run(ctx, "end_trip", func(tx *gorm.DB) error {
		var err error
		trip, err = lockTrip(tx, tripID)
		if err != nil {
			return err
		}
		if trip.Status == models.TripCompleted {
			return apperr.InvalidState("Trip is already completed")
		}

		bus, err := lockBus(tx, trip.BusID)
		if err != nil {
			return err
		}

		now := c.now()
		trip.Status = models.TripCompleted
		trip.EndedAt = &now
		if in.ArrivalTime != "" {
			trip.ArrivalTime = in.ArrivalTime
		}
		if in.TicketSales != nil {
			trip.TicketSales = *in.TicketSales
		}
		if in.Expenses != nil {
			trip.Expenses = *in.Expenses
		}
		if in.Incentives != nil {
			trip.Incentives = *in.Incentives
		}
		trip.Profit = trip.TicketSales - trip.Expenses

		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(map[string]any{
			"status":       trip.Status,
			"ended_at":     now,
			"arrival_time": trip.ArrivalTime,
			"ticket_sales": trip.TicketSales,
			"expenses":     trip.Expenses,
			"incentives":   trip.Incentives,
			"profit":       trip.Profit,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Bus{}).Where("bus_id = ?", bus.BusID).
			Update("status", models.BusActive).Error; err != nil {
			return err
		}

		return tx.Create(&models.Earning{
			ID:         uuid.NewString(),
			BusID:      bus.BusID,
			OwnerID:    bus.OwnerID,
			TripID:     trip.ID,
			TotalSales: trip.TicketSales,
			Expenses:   trip.Expenses,
			Profit:     trip.Profit,
			Date:       now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	c.metrics.TripEnded()
	c.publish(events.SubjectTripEnded, trip)
	return trip, nil
}

// GetTrip loads one trip.
func (c *Coordinator) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := c.db.WithContext(ctx).Where("id = ?", id).Take(&trip).Error; err != nil {
		return nil, apperr.FromDB(err, "Trip not found")
	}
	return &trip, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
