package dispatch

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/events"
	"bus_dispatch/internal/models"
)

// EnqueueInput identifies the bus and where/when it waits.
type EnqueueInput struct {
	BusID      string
	RouteID    string
	TerminalID string
	TimeslotID string
}

// EnqueueBus puts a dispatchable bus in a terminal's queue. It does not change
// the bus status. A bus may hold at most one queued entry per terminal.
func (c *Coordinator) EnqueueBus(ctx context.Context, in EnqueueInput) (*models.QueueEntry, error) {
	in.BusID = strings.TrimSpace(in.BusID)
	in.RouteID = strings.TrimSpace(in.RouteID)
	in.TerminalID = strings.TrimSpace(in.TerminalID)
	in.TimeslotID = strings.TrimSpace(in.TimeslotID)
	if in.BusID == "" || in.RouteID == "" || in.TerminalID == "" || in.TimeslotID == "" {
		c.metrics.Failure("enqueue", apperr.KindValidation.String())
		return nil, apperr.Validation("Missing required fields: busId, routeId, terminalId, or timeslot")
	}

	var entry models.QueueEntry
	err := c.run(ctx, "enqueue", func(tx *gorm.DB) error {
		// The bus row lock also serialises concurrent enqueues of the same bus.
		bus, err := lockBus(tx, in.BusID)
		if err != nil {
			return err
		}
		if !bus.Status.Dispatchable() {
			return apperr.InvalidState("Bus %s cannot be queued. Current status: %s", bus.BusID, bus.Status)
		}

		var active int64
		if err := tx.Model(&models.QueueEntry{}).
			Where("bus_id = ? AND terminal_id = ? AND status = ?", in.BusID, in.TerminalID, models.QueueQueued).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperr.Conflict("Bus %s is already queued at terminal %s", in.BusID, in.TerminalID)
		}

		entry = models.QueueEntry{
			ID:         uuid.NewString(),
			BusID:      in.BusID,
			RouteID:    in.RouteID,
			TerminalID: in.TerminalID,
			TimeslotID: in.TimeslotID,
			Status:     models.QueueQueued,
			QueuedAt:   c.now(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	c.metrics.QueueTransition("enqueued")
	c.publish(events.SubjectQueueEnqueued, entry)
	return &entry, nil
}

// MarkDeparted moves a queued entry to departed. It does not start a trip.
// A second call fails instead of re-stamping the departure time.
func (c *Coordinator) MarkDeparted(ctx context.Context, id string) (*models.QueueEntry, error) {
	var entry *models.QueueEntry
	err := c.run(ctx, "depart", func(tx *gorm.DB) error {
		var err error
		entry, err = lockQueueEntry(tx, id)
		if err != nil {
			return err
		}
		if entry.Status == models.QueueDeparted {
			return apperr.InvalidState("Queue entry is already departed")
		}

		now := c.now()
		if now.Before(entry.QueuedAt) {
			now = entry.QueuedAt
		}
		entry.Status = models.QueueDeparted
		entry.DepartedAt = &now
		return tx.Model(&models.QueueEntry{}).Where("id = ?", entry.ID).Updates(map[string]any{
			"status":      entry.Status,
			"departed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	c.metrics.QueueTransition("departed")
	c.publish(events.SubjectQueueDeparted, entry)
	return entry, nil
}

// RemoveFromQueue deletes an entry that has not spawned a trip.
func (c *Coordinator) RemoveFromQueue(ctx context.Context, id string) error {
	err := c.run(ctx, "remove", func(tx *gorm.DB) error {
		entry, err := lockQueueEntry(tx, id)
		if err != nil {
			return err
		}
		if entry.TripID != nil {
			return apperr.InvalidState("Queue entry is linked to trip %s and cannot be removed", *entry.TripID)
		}
		return tx.Delete(&models.QueueEntry{}, "id = ?", entry.ID).Error
	})
	if err == nil {
		c.metrics.QueueTransition("removed")
	}
	return err
}

// ListQueue returns entries oldest first, optionally for one terminal.
func (c *Coordinator) ListQueue(ctx context.Context, terminalID string) ([]models.QueueEntry, error) {
	q := c.db.WithContext(ctx).Order("queued_at ASC")
	if terminalID != "" {
		q = q.Where("terminal_id = ?", terminalID)
	}
	entries := []models.QueueEntry{}
	if err := q.Find(&entries).Error; err != nil {
		return nil, apperr.Server(err)
	}
	return entries, nil
}
