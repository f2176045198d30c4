package models

import "time"

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User is a staff account. ID is the login handle (ADM001, STF014, ...).
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	Name           string    `json:"name"`
	Role           Role      `json:"role" gorm:"index;size:16"`
	Phone          string    `json:"phone"`
	HashedPassword string    `json:"-"`
	Status         string    `json:"status" gorm:"default:active"`
	AssignedBuses  []string  `json:"assignedBuses" gorm:"serializer:json"`
	TerminalID     string    `json:"terminalId"` // dispatch station for starters
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
