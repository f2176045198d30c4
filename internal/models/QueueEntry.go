package models

import "time"

type QueueStatus string

const (
	QueueQueued   QueueStatus = "queued"
	QueueDeparted QueueStatus = "departed"
)

// QueueEntry is a bus waiting at a terminal for dispatch. TripID is set in
// the same transaction that starts the trip the entry spawned.
type QueueEntry struct {
	ID         string      `json:"id" gorm:"primaryKey;size:36"`
	BusID      string      `json:"busId" gorm:"index;size:32"`
	RouteID    string      `json:"routeId" gorm:"index"`
	TerminalID string      `json:"terminalId" gorm:"index"`
	TimeslotID string      `json:"timeslotId"`
	Status     QueueStatus `json:"status" gorm:"index;size:16"`
	QueuedAt   time.Time   `json:"queuedAt"`
	DepartedAt *time.Time  `json:"departedAt"`
	TripID     *string     `json:"tripId" gorm:"size:32"`
}
