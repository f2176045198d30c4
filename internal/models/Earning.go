package models

import "time"

// Earning is written when a trip ends and feeds the owner earnings report.
type Earning struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	BusID      string    `json:"busId" gorm:"index;size:32"`
	OwnerID    string    `json:"ownerId" gorm:"index"`
	TripID     string    `json:"tripId" gorm:"uniqueIndex;size:32"`
	TotalSales float64   `json:"totalSales"`
	Expenses   float64   `json:"expenses"`
	Profit     float64   `json:"profit"`
	Date       time.Time `json:"date" gorm:"index"`
}
