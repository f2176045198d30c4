package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/dispatch"
	"bus_dispatch/internal/models"
)

// ListQueues shows the dispatch queue oldest first. Starters only see their
// own terminal; everyone else may pass ?terminalId=.
func (h *Handler) ListQueues(c *gin.Context) {
	terminalID := c.Query("terminalId")
	if u := caller(c); u.Role == models.RoleStarter {
		terminalID = u.TerminalID
	}
	entries, err := h.Dispatch.ListQueue(c.Request.Context(), terminalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type enqueueInput struct {
	BusID      string `json:"busId"`
	RouteID    string `json:"routeId"`
	TerminalID string `json:"terminalId"`
	Timeslot   string `json:"timeslot"`
	TimeslotID string `json:"timeslotId"`
}

func (h *Handler) EnqueueBus(c *gin.Context) {
	var input enqueueInput
	if !bindJSON(c, &input) {
		return
	}
	terminalID := input.TerminalID
	if u := caller(c); terminalID == "" && u.Role == models.RoleStarter {
		terminalID = u.TerminalID
	}

	entry, err := h.Dispatch.EnqueueBus(c.Request.Context(), dispatch.EnqueueInput{
		BusID:      input.BusID,
		RouteID:    input.RouteID,
		TerminalID: terminalID,
		TimeslotID: firstNonEmpty(input.TimeslotID, input.Timeslot),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Bus added to queue with timeslot successfully",
		"queueId": entry.ID,
		"entry":   entry,
	})
}

func (h *Handler) MarkDeparted(c *gin.Context) {
	entry, err := h.Dispatch.MarkDeparted(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus marked as departed", "entry": entry})
}

func (h *Handler) RemoveFromQueue(c *gin.Context) {
	if err := h.Dispatch.RemoveFromQueue(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus removed from queue"})
}
