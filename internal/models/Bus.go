package models

import "time"

// BusStatus is the operational status of a bus.
type BusStatus string

const (
	BusAvailable BusStatus = "Available"
	BusActive    BusStatus = "active"
	BusInTransit BusStatus = "In Transit"
	BusInactive  BusStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s BusStatus) Valid() bool {
	switch s {
	case BusAvailable, BusActive, BusInTransit, BusInactive:
		return true
	}
	return false
}

// Dispatchable reports whether a bus in this status may be queued or start a trip.
func (s BusStatus) Dispatchable() bool {
	return s == BusAvailable || s == BusActive
}

type Bus struct {
	BusID       string    `json:"busId" gorm:"primaryKey;column:bus_id;size:32"`
	NumberPlate string    `json:"numberPlate"`
	Route       string    `json:"route"`
	DriverID    string    `json:"driverId"`
	ConductorID string    `json:"conductorId"`
	OwnerID     string    `json:"ownerId" gorm:"index"`
	Status      BusStatus `json:"status" gorm:"index;size:16"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
