package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
	tu "bus_dispatch/internal/testutil"
)

func next(t *testing.T, db *gorm.DB, a Allocator) string {
	t.Helper()
	var id string
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = a.Next(tx)
		return err
	}))
	return id
}

func TestBusIDsContinueFromHighestExisting(t *testing.T) {
	db := tu.NewDB(t)
	require.NoError(t, db.Create(&models.Bus{BusID: "BUS001"}).Error)
	require.NoError(t, db.Create(&models.Bus{BusID: "BUS003"}).Error)

	assert.Equal(t, "BUS004", next(t, db, Buses()))
	assert.Equal(t, "BUS005", next(t, db, Buses()))
}

func TestCounterSurvivesDeletion(t *testing.T) {
	db := tu.NewDB(t)
	first := next(t, db, Buses())
	require.NoError(t, db.Create(&models.Bus{BusID: first}).Error)
	require.NoError(t, db.Delete(&models.Bus{}, "bus_id = ?", first).Error)

	assert.Equal(t, "BUS001", first)
	assert.Equal(t, "BUS002", next(t, db, Buses()), "numbers are never reused")
}

func TestUserScopesArePerPrefix(t *testing.T) {
	db := tu.NewDB(t)
	require.NoError(t, db.Create(&models.User{ID: "STF007", Role: models.RoleDriver}).Error)

	driver, err := Users(models.RoleDriver)
	require.NoError(t, err)
	conductor, err := Users(models.RoleConductor)
	require.NoError(t, err)
	admin, err := Users(models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "STF008", next(t, db, driver))
	assert.Equal(t, "STF009", next(t, db, conductor), "drivers and conductors share STF")
	assert.Equal(t, "ADM001", next(t, db, admin))

	_, err = Users(models.Role("Passenger"))
	assert.ErrorIs(t, err, models.ErrInvalidRole)
}

func TestTripScopesArePerDay(t *testing.T) {
	db := tu.NewDB(t)
	d1 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "TRIP_20261018_001", next(t, db, Trips(d1)))
	assert.Equal(t, "TRIP_20261018_002", next(t, db, Trips(d1)))
	assert.Equal(t, "TRIP_20261019_001", next(t, db, Trips(d1.AddDate(0, 0, 1))))
}

func TestMaxSuffixIgnoresLikeWildcards(t *testing.T) {
	db := tu.NewDB(t)
	// "_" is a LIKE wildcard; TRIPX20261018X050 must not count.
	require.NoError(t, db.Create(&models.Trip{ID: "TRIPX20261018X050"}).Error)
	require.NoError(t, db.Create(&models.Trip{ID: "TRIP_20261018_002"}).Error)
	require.NoError(t, db.Create(&models.Trip{ID: "TRIP_20261018_abc"}).Error)

	n, err := MaxSuffix(&models.Trip{}, "id", "TRIP_20261018_")(db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "BUS007", Format("BUS", 7))
	assert.Equal(t, "BUS1000", Format("BUS", 1000))
}
