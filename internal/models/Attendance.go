package models

import "time"

// AttendanceRecord is a self-reported daily attendance mark by crew.
type AttendanceRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"userId" gorm:"index"`
	Role       Role      `json:"role"`
	Status     string    `json:"status"`
	Date       string    `json:"date"`
	RecordedAt time.Time `json:"recordedAt"`
}

type PunchAction string

const (
	PunchIn  PunchAction = "punch_in"
	PunchOut PunchAction = "punch_out"
)

// Punch is a clock-in/clock-out event logged at the terminal.
type Punch struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	UserID    string      `json:"userId" gorm:"index"`
	Action    PunchAction `json:"action" gorm:"size:16"`
	Timestamp time.Time   `json:"timestamp" gorm:"index"`
}
