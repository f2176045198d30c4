package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

func (h *Handler) ListTimeslots(c *gin.Context) {
	q := h.db(c).Order("departure_time ASC, label ASC")
	if routeID := c.Query("routeId"); routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}
	if terminalID := c.Query("terminalId"); terminalID != "" {
		q = q.Where("terminal_id = ?", terminalID)
	}
	slots := []models.Timeslot{}
	if err := q.Find(&slots).Error; err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *Handler) CreateTimeslot(c *gin.Context) {
	var slot models.Timeslot
	if !bindJSON(c, &slot) {
		return
	}
	slot.ID = uuid.NewString()
	slot.CreatedAt = h.now()
	if err := h.db(c).Create(&slot).Error; err != nil {
		respondError(c, apperr.FromDB(err, "Timeslot not found"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Timeslot created successfully", "timeslotId": slot.ID})
}

func (h *Handler) UpdateTimeslot(c *gin.Context) {
	var input struct {
		Label         *string `json:"label"`
		RouteID       *string `json:"routeId"`
		TerminalID    *string `json:"terminalId"`
		DepartureTime *string `json:"departureTime"`
	}
	if !bindJSON(c, &input) {
		return
	}
	updates := map[string]any{}
	if input.Label != nil {
		updates["label"] = *input.Label
	}
	if input.RouteID != nil {
		updates["route_id"] = *input.RouteID
	}
	if input.TerminalID != nil {
		updates["terminal_id"] = *input.TerminalID
	}
	if input.DepartureTime != nil {
		updates["departure_time"] = *input.DepartureTime
	}

	var slot models.Timeslot
	if err := h.db(c).Where("id = ?", c.Param("id")).Take(&slot).Error; err != nil {
		respondError(c, apperr.FromDB(err, "Timeslot not found"))
		return
	}
	if len(updates) > 0 {
		if err := h.db(c).Model(&slot).Updates(updates).Error; err != nil {
			respondError(c, apperr.Server(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timeslot updated successfully"})
}

func (h *Handler) DeleteTimeslot(c *gin.Context) {
	res := h.db(c).Where("id = ?", c.Param("id")).Delete(&models.Timeslot{})
	if res.Error != nil {
		respondError(c, apperr.Server(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Timeslot not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timeslot deleted successfully"})
}
