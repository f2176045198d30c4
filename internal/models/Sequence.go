package models

// Sequence is the counter row behind every generated identifier. Scope names
// the id family: "bus", "user:STF", "trip:20261018".
type Sequence struct {
	Scope string `gorm:"primaryKey;size:64"`
	Value int
}
