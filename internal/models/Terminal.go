package models

import "time"

// Terminal is a physical dispatch point where buses queue before departure.
// Location is stored as WKB (SRID 4326 point); the API speaks GeoJSON.
type Terminal struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
