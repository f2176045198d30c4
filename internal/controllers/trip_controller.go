package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/dispatch"
)

type startTripInput struct {
	BusID            string `json:"busId"`
	DepartureTime    string `json:"departureTime"`
	Route            string `json:"route"`
	DriverID         string `json:"driverId"`
	ConductorID      string `json:"conductorId"`
	StarterStationID string `json:"starterStationId"`
	QueueEntryID     string `json:"queueEntryId"`
}

// StartTrip dispatches a bus. The station is the starter's own terminal,
// else the one in the body, else the configured default.
func (h *Handler) StartTrip(c *gin.Context) {
	var input startTripInput
	if !bindJSON(c, &input) {
		return
	}
	u := caller(c)
	station := firstNonEmpty(u.TerminalID, input.StarterStationID, h.Config.DefaultStationID)

	trip, err := h.Dispatch.StartTrip(c.Request.Context(), dispatch.StartTripInput{
		BusID:            input.BusID,
		DepartureTime:    input.DepartureTime,
		Route:            input.Route,
		DriverID:         input.DriverID,
		ConductorID:      input.ConductorID,
		StarterID:        u.ID,
		StarterStationID: station,
		QueueEntryID:     input.QueueEntryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Trip started successfully", "tripId": trip.ID, "trip": trip})
}

type endTripInput struct {
	ArrivalTime string   `json:"arrivalTime"`
	TicketSales *float64 `json:"ticketSales"`
	Expenses    *float64 `json:"expenses"`
	Incentives  *float64 `json:"incentives"`
}

func (h *Handler) EndTrip(c *gin.Context) {
	var input endTripInput
	if !bindJSON(c, &input) {
		return
	}
	trip, err := h.Dispatch.EndTrip(c.Request.Context(), c.Param("tripId"), dispatch.EndTripInput{
		ArrivalTime: input.ArrivalTime,
		TicketSales: input.TicketSales,
		Expenses:    input.Expenses,
		Incentives:  input.Incentives,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip ended successfully", "trip": trip})
}

func (h *Handler) GetTrip(c *gin.Context) {
	trip, err := h.Dispatch.GetTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) StationTrips(c *gin.Context) {
	trips, err := h.Dispatch.TripsByStation(c.Request.Context(), c.Param("stationId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (h *Handler) DailyStationReport(c *gin.Context) {
	report, err := h.Dispatch.DailyStationReport(c.Request.Context(), c.Param("stationId"), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) TripsByDate(c *gin.Context) {
	stats, err := h.Dispatch.TripStatsForDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
