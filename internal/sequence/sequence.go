// Package sequence hands out the human-readable identifiers used across the
// system (BUS004, STF012, TRIP_20261018_007).
//
// Each id family owns one row in the sequences table. Next locks that row
// with SELECT ... FOR UPDATE inside the caller's transaction, so two
// concurrent allocations in the same scope are serialised by the database
// and can never produce the same number. The first allocation in a scope
// seeds the counter from the highest suffix already present, which keeps
// numbering continuous for data created before the counter existed.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_dispatch/internal/models"
)

// Seeder reports the highest number already in use for a scope. It runs once,
// when the scope's counter row is created.
type Seeder func(tx *gorm.DB) (int, error)

// Allocator describes one id family.
type Allocator struct {
	Scope  string
	Prefix string
	Seed   Seeder
}

// Format renders prefix followed by n zero-padded to three digits.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// Next allocates the next identifier. tx must be a transaction: the counter
// row stays locked until it commits.
func (a Allocator) Next(tx *gorm.DB) (string, error) {
	n, err := Next(tx, a.Scope, a.Seed)
	if err != nil {
		return "", err
	}
	return Format(a.Prefix, n), nil
}

// Next increments the counter for scope and returns the new value.
func Next(tx *gorm.DB, scope string, seed Seeder) (int, error) {
	var seq models.Sequence
	err := lockRow(tx, scope, &seq)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		start := 0
		if seed != nil {
			if start, err = seed(tx); err != nil {
				return 0, fmt.Errorf("seed sequence %s: %w", scope, err)
			}
		}
		// Another transaction may create the row first; DO NOTHING lets us
		// fall through and lock theirs.
		row := models.Sequence{Scope: scope, Value: start}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("create sequence %s: %w", scope, err)
		}
		err = lockRow(tx, scope, &seq)
	}
	if err != nil {
		return 0, fmt.Errorf("lock sequence %s: %w", scope, err)
	}

	seq.Value++
	if err := tx.Model(&models.Sequence{}).Where("scope = ?", scope).Update("value", seq.Value).Error; err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", scope, err)
	}
	return seq.Value, nil
}

func lockRow(tx *gorm.DB, scope string, seq *models.Sequence) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope = ?", scope).
		Take(seq).Error
}

// MaxSuffix builds a Seeder that scans column of model for values starting
// with prefix and returns the largest numeric remainder.
func MaxSuffix(model any, column, prefix string) Seeder {
	return func(tx *gorm.DB) (int, error) {
		var ids []string
		if err := tx.Model(model).Where(column+" LIKE ?", prefix+"%").Pluck(column, &ids).Error; err != nil {
			return 0, err
		}
		highest := 0
		for _, id := range ids {
			// LIKE treats '_' as a wildcard, so re-check the literal prefix.
			if !strings.HasPrefix(id, prefix) {
				continue
			}
			n, err := strconv.Atoi(id[len(prefix):])
			if err == nil && n > highest {
				highest = n
			}
		}
		return highest, nil
	}
}

// Buses allocates BUS### ids.
func Buses() Allocator {
	return Allocator{
		Scope:  "bus",
		Prefix: "BUS",
		Seed:   MaxSuffix(&models.Bus{}, "bus_id", "BUS"),
	}
}

// Users allocates ids for the given role's prefix (ADM, OWN, SEC, STR, STF).
func Users(role models.Role) (Allocator, error) {
	prefix := role.IDPrefix()
	if prefix == "" {
		return Allocator{}, models.ErrInvalidRole
	}
	return Allocator{
		Scope:  "user:" + prefix,
		Prefix: prefix,
		Seed:   MaxSuffix(&models.User{}, "id", prefix),
	}, nil
}

// Trips allocates TRIP_YYYYMMDD_### ids for the calendar day of t, in t's
// location.
func Trips(t time.Time) Allocator {
	day := t.Format("20060102")
	prefix := "TRIP_" + day + "_"
	return Allocator{
		Scope:  "trip:" + day,
		Prefix: prefix,
		Seed:   MaxSuffix(&models.Trip{}, "id", prefix),
	}
}
