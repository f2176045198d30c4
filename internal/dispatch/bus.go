package dispatch

import (
	"context"

	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

// SetBusStatus is the administrative status change. In Transit is reserved
// for StartTrip/EndTrip: it can neither be set nor left through here.
func (c *Coordinator) SetBusStatus(ctx context.Context, busID string, status models.BusStatus) (*models.Bus, error) {
	if !status.Valid() {
		c.metrics.Failure("set_bus_status", apperr.KindValidation.String())
		return nil, apperr.Validation("Invalid status %q", status)
	}

	var bus *models.Bus
	err := c.run(ctx, "set_bus_status", func(tx *gorm.DB) error {
		var err error
		bus, err = lockBus(tx, busID)
		if err != nil {
			return err
		}
		if status == models.BusInTransit {
			return apperr.InvalidState("Status %s is set by starting a trip", models.BusInTransit)
		}
		if bus.Status == models.BusInTransit {
			return apperr.InvalidState("Bus %s is in transit; end its trip first", bus.BusID)
		}
		bus.Status = status
		return tx.Model(&models.Bus{}).Where("bus_id = ?", bus.BusID).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// DeleteBus removes a bus that no open trip references.
func (c *Coordinator) DeleteBus(ctx context.Context, busID string) error {
	return c.run(ctx, "delete_bus", func(tx *gorm.DB) error {
		bus, err := lockBus(tx, busID)
		if err != nil {
			return err
		}
		var running int64
		if err := tx.Model(&models.Trip{}).
			Where("bus_id = ? AND status = ?", bus.BusID, models.TripRunning).
			Count(&running).Error; err != nil {
			return err
		}
		if running > 0 || bus.Status == models.BusInTransit {
			return apperr.InvalidState("Bus %s has a running trip and cannot be deleted", bus.BusID)
		}
		return tx.Delete(&models.Bus{}, "bus_id = ?", bus.BusID).Error
	})
}
