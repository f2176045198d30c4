package dispatch

import (
	"context"
	"sort"
	"strings"
	"time"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

const dayLayout = "2006-01-02"

// StationReport sums one station's trips started on one day.
type StationReport struct {
	Date          string  `json:"date"`
	StationID     string  `json:"stationId"`
	TotalTrips    int     `json:"totalTrips"`
	TotalSales    float64 `json:"totalSales"`
	TotalExpenses float64 `json:"totalExpenses"`
	TotalProfit   float64 `json:"totalProfit"`
}

// BusDailyTotals sums one bus's trips started on one day.
type BusDailyTotals struct {
	Date          string        `json:"date"`
	BusID         string        `json:"busId"`
	TotalTrips    int           `json:"totalTrips"`
	TotalSales    float64       `json:"totalSales"`
	TotalExpenses float64       `json:"totalExpenses"`
	TotalProfit   float64       `json:"totalProfit"`
	Trips         []models.Trip `json:"trips"`
}

// TripStats describes every trip whose id carries the given day.
type TripStats struct {
	Date           string        `json:"date"`
	TotalTrips     int           `json:"totalTrips"`
	CompletedTrips int           `json:"completedTrips"`
	RunningTrips   int           `json:"runningTrips"`
	TotalSales     float64       `json:"totalSales"`
	TotalExpenses  float64       `json:"totalExpenses"`
	TotalProfit    float64       `json:"totalProfit"`
	UniqueBuses    int           `json:"uniqueBuses"`
	Trips          []models.Trip `json:"trips"`
}

// EarningsReport sums recorded earnings.
type EarningsReport struct {
	Date          string           `json:"date,omitempty"`
	OwnerID       string           `json:"ownerId,omitempty"`
	TotalRecords  int              `json:"totalRecords"`
	TotalSales    float64          `json:"totalSales"`
	TotalExpenses float64          `json:"totalExpenses"`
	TotalProfit   float64          `json:"totalProfit"`
	Records       []models.Earning `json:"records"`
}

// BusExpenses is one row of the fuel/expenses report.
type BusExpenses struct {
	BusID    string  `json:"busId"`
	Trips    int     `json:"trips"`
	Expenses float64 `json:"expenses"`
}

// TripsByStation lists a station's trips in id (chronological) order.
func (c *Coordinator) TripsByStation(ctx context.Context, stationID string) ([]models.Trip, error) {
	trips := []models.Trip{}
	err := c.db.WithContext(ctx).
		Where("starter_station_id = ?", stationID).
		Order("id ASC").
		Find(&trips).Error
	if err != nil {
		return nil, apperr.Server(err)
	}
	return trips, nil
}

// DailyStationReport aggregates a station's trips created on date (YYYY-MM-DD).
func (c *Coordinator) DailyStationReport(ctx context.Context, stationID, date string) (*StationReport, error) {
	if err := validDay(date); err != nil {
		return nil, err
	}
	trips, err := c.TripsByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	daily := c.onDay(trips, date)

	r := &StationReport{Date: date, StationID: stationID, TotalTrips: len(daily)}
	r.TotalSales, r.TotalExpenses = sumTrips(daily)
	r.TotalProfit = r.TotalSales - r.TotalExpenses
	return r, nil
}

// DailyBusTotals aggregates a bus's trips created on date.
func (c *Coordinator) DailyBusTotals(ctx context.Context, busID, date string) (*BusDailyTotals, error) {
	if err := validDay(date); err != nil {
		return nil, err
	}
	var trips []models.Trip
	if err := c.db.WithContext(ctx).Where("bus_id = ?", busID).Order("id ASC").Find(&trips).Error; err != nil {
		return nil, apperr.Server(err)
	}
	daily := c.onDay(trips, date)

	r := &BusDailyTotals{Date: date, BusID: busID, TotalTrips: len(daily), Trips: daily}
	r.TotalSales, r.TotalExpenses = sumTrips(daily)
	r.TotalProfit = r.TotalSales - r.TotalExpenses
	return r, nil
}

// TripStatsForDate uses the date embedded in trip ids.
func (c *Coordinator) TripStatsForDate(ctx context.Context, date string) (*TripStats, error) {
	if err := validDay(date); err != nil {
		return nil, err
	}
	prefix := "TRIP_" + strings.ReplaceAll(date, "-", "") + "_"

	var candidates []models.Trip
	if err := c.db.WithContext(ctx).Where("id LIKE ?", prefix+"%").Find(&candidates).Error; err != nil {
		return nil, apperr.Server(err)
	}
	trips := make([]models.Trip, 0, len(candidates))
	for _, t := range candidates {
		if strings.HasPrefix(t.ID, prefix) {
			trips = append(trips, t)
		}
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })

	s := &TripStats{Date: date, TotalTrips: len(trips), Trips: trips}
	buses := map[string]struct{}{}
	for _, t := range trips {
		switch t.Status {
		case models.TripCompleted:
			s.CompletedTrips++
		case models.TripRunning:
			s.RunningTrips++
		}
		buses[t.BusID] = struct{}{}
	}
	s.UniqueBuses = len(buses)
	s.TotalSales, s.TotalExpenses = sumTrips(trips)
	s.TotalProfit = s.TotalSales - s.TotalExpenses
	return s, nil
}

// DepartedEntries is the queue-side trips report: departed entries, optionally
// restricted to a departure day and a route.
func (c *Coordinator) DepartedEntries(ctx context.Context, date, routeID string) ([]models.QueueEntry, error) {
	if date != "" {
		if err := validDay(date); err != nil {
			return nil, err
		}
	}
	q := c.db.WithContext(ctx).Where("status = ?", models.QueueDeparted).Order("departed_at ASC")
	if routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}
	var entries []models.QueueEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, apperr.Server(err)
	}

	out := []models.QueueEntry{}
	for _, e := range entries {
		if date == "" || (e.DepartedAt != nil && c.day(*e.DepartedAt) == date) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Earnings sums earning records, optionally for one day and one owner.
func (c *Coordinator) Earnings(ctx context.Context, date, ownerID string) (*EarningsReport, error) {
	if date != "" {
		if err := validDay(date); err != nil {
			return nil, err
		}
	}
	q := c.db.WithContext(ctx).Order("date ASC")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	var all []models.Earning
	if err := q.Find(&all).Error; err != nil {
		return nil, apperr.Server(err)
	}

	r := &EarningsReport{Date: date, OwnerID: ownerID, Records: []models.Earning{}}
	for _, e := range all {
		if date != "" && c.day(e.Date) != date {
			continue
		}
		r.Records = append(r.Records, e)
		r.TotalSales += e.TotalSales
		r.TotalExpenses += e.Expenses
		r.TotalProfit += e.Profit
	}
	r.TotalRecords = len(r.Records)
	return r, nil
}

// ExpensesByBus groups completed-trip expenses per bus, optionally for a day.
func (c *Coordinator) ExpensesByBus(ctx context.Context, date string) ([]BusExpenses, error) {
	if date != "" {
		if err := validDay(date); err != nil {
			return nil, err
		}
	}
	var trips []models.Trip
	if err := c.db.WithContext(ctx).Where("status = ?", models.TripCompleted).Find(&trips).Error; err != nil {
		return nil, apperr.Server(err)
	}
	if date != "" {
		trips = c.onDay(trips, date)
	}

	byBus := map[string]*BusExpenses{}
	for _, t := range trips {
		row, ok := byBus[t.BusID]
		if !ok {
			row = &BusExpenses{BusID: t.BusID}
			byBus[t.BusID] = row
		}
		row.Trips++
		row.Expenses += t.Expenses
	}
	out := make([]BusExpenses, 0, len(byBus))
	for _, row := range byBus {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusID < out[j].BusID })
	return out, nil
}

func (c *Coordinator) day(t time.Time) string {
	return t.In(c.loc).Format(dayLayout)
}

func (c *Coordinator) onDay(trips []models.Trip, date string) []models.Trip {
	out := []models.Trip{}
	for _, t := range trips {
		if c.day(t.CreatedAt) == date {
			out = append(out, t)
		}
	}
	return out
}

func sumTrips(trips []models.Trip) (sales, expenses float64) {
	for _, t := range trips {
		sales += t.TicketSales
		expenses += t.Expenses
	}
	return sales, expenses
}

func validDay(date string) error {
	if _, err := time.Parse(dayLayout, date); err != nil {
		return apperr.Validation("Invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}
