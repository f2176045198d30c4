package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/models"
)

// TripsReport lists departed queue entries, filtered by ?date= and ?routeId=.
func (h *Handler) TripsReport(c *gin.Context) {
	entries, err := h.Dispatch.DepartedEntries(c.Request.Context(), c.Query("date"), c.Query("routeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// EarningsReport sums earnings by ?date= and ?ownerId=. Owners are always
// limited to their own records.
func (h *Handler) EarningsReport(c *gin.Context) {
	ownerID := c.Query("ownerId")
	if u := caller(c); u.Role == models.RoleOwner {
		ownerID = u.ID
	}
	report, err := h.Dispatch.Earnings(c.Request.Context(), c.Query("date"), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// FuelReport groups completed-trip expenses per bus.
func (h *Handler) FuelReport(c *gin.Context) {
	rows, err := h.Dispatch.ExpensesByBus(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
