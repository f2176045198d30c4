package models

import "time"

type Timeslot struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Label         string    `json:"label" binding:"required"`
	RouteID       string    `json:"routeId" gorm:"index"`
	TerminalID    string    `json:"terminalId" gorm:"index"`
	DepartureTime string    `json:"departureTime"`
	CreatedAt     time.Time `json:"createdAt"`
}
