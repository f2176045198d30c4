package models

import "time"

// Notice is a broadcast message shown to users whose role is in TargetRoles.
type Notice struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	TargetRoles []Role    `json:"targetRoles" gorm:"serializer:json"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
