package models

import "time"

type TripStatus string

const (
	TripRunning   TripStatus = "Running"
	TripCompleted TripStatus = "Completed"
)

// Trip is one bus journey from dispatch to completion. ID has the form
// TRIP_YYYYMMDD_NNN so lexical order is chronological within a day.
type Trip struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	BusID            string     `json:"busId" gorm:"index;size:32"`
	DriverID         string     `json:"driverId,omitempty"`
	ConductorID      string     `json:"conductorId,omitempty"`
	Route            string     `json:"route,omitempty"`
	DepartureTime    string     `json:"departureTime,omitempty"`
	StarterID        string     `json:"starterId"`
	StarterStationID string     `json:"starterStationId" gorm:"index"`
	QueueEntryID     *string    `json:"queueEntryId,omitempty" gorm:"size:36"`
	Status           TripStatus `json:"status" gorm:"index;size:16"`
	TicketSales      float64    `json:"ticketSales"`
	Expenses         float64    `json:"expenses"`
	Incentives       float64    `json:"incentives"`
	Profit           float64    `json:"profit"`
	ArrivalTime      string     `json:"arrivalTime,omitempty"`
	CreatedAt        time.Time  `json:"createdAt" gorm:"index"`
	EndedAt          *time.Time `json:"endedAt"`
}
