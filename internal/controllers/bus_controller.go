package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
	"bus_dispatch/internal/sequence"
)

func (h *Handler) ListBuses(c *gin.Context) {
	q := h.db(c).Order("bus_id ASC")
	if ownerID := c.Query("ownerId"); ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	buses := []models.Bus{}
	if err := q.Find(&buses).Error; err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, buses)
}

func (h *Handler) GetBus(c *gin.Context) {
	bus, err := h.loadBus(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

// AvailableBuses lists buses that can be queued or dispatched right now.
func (h *Handler) AvailableBuses(c *gin.Context) {
	buses := []models.Bus{}
	err := h.db(c).
		Where("status IN ?", []models.BusStatus{models.BusAvailable, models.BusActive}).
		Order("bus_id ASC").
		Find(&buses).Error
	if err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, buses)
}

// BusDailyTotals sums one bus's trips for a day. Owners only see their buses.
func (h *Handler) BusDailyTotals(c *gin.Context) {
	bus, err := h.loadBus(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ownsBus(caller(c), bus); err != nil {
		respondError(c, err)
		return
	}
	totals, err := h.Dispatch.DailyBusTotals(c.Request.Context(), bus.BusID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// UpdateBusStatus is the administrative status change; trip transitions
// own In Transit.
func (h *Handler) UpdateBusStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}
	bus, err := h.Dispatch.SetBusStatus(c.Request.Context(), c.Param("id"), models.BusStatus(body.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus status updated successfully", "bus": bus})
}

type busInput struct {
	NumberPlate *string `json:"numberPlate"`
	Route       *string `json:"route"`
	DriverID    *string `json:"driverId"`
	ConductorID *string `json:"conductorId"`
	OwnerID     *string `json:"ownerId"`
}

func (in busInput) value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// CreateBus registers a bus under a generated BUS### id with status
// Available. Owners can only create buses for themselves.
func (h *Handler) CreateBus(c *gin.Context) {
	var input busInput
	if !bindJSON(c, &input) {
		return
	}
	u := caller(c)
	ownerID := input.value(input.OwnerID)
	if u.Role == models.RoleOwner {
		if ownerID != "" && ownerID != u.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Owners can only add their own buses"})
			return
		}
		ownerID = u.ID
	}
	if input.value(input.NumberPlate) == "" || input.value(input.Route) == "" || ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: numberPlate, route, and ownerId are required"})
		return
	}

	bus := models.Bus{
		NumberPlate: strings.ToUpper(input.value(input.NumberPlate)),
		Route:       input.value(input.Route),
		DriverID:    input.value(input.DriverID),
		ConductorID: input.value(input.ConductorID),
		OwnerID:     ownerID,
		Status:      models.BusAvailable,
	}
	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		id, err := sequence.Buses().Next(tx)
		if err != nil {
			return err
		}
		bus.BusID = id
		return tx.Create(&bus).Error
	})
	if err != nil {
		respondError(c, apperr.FromDB(err, "Bus not found"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Bus added successfully",
		"busId":       bus.BusID,
		"generatedId": bus.BusID,
	})
}

// UpdateBus edits descriptive fields. The id and status are not editable here.
func (h *Handler) UpdateBus(c *gin.Context) {
	var input busInput
	if !bindJSON(c, &input) {
		return
	}
	bus, err := h.loadBus(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	u := caller(c)
	if err := ownsBus(u, bus); err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]any{}
	if input.NumberPlate != nil {
		updates["number_plate"] = strings.ToUpper(input.value(input.NumberPlate))
	}
	if input.Route != nil {
		updates["route"] = input.value(input.Route)
	}
	if input.DriverID != nil {
		updates["driver_id"] = input.value(input.DriverID)
	}
	if input.ConductorID != nil {
		updates["conductor_id"] = input.value(input.ConductorID)
	}
	if input.OwnerID != nil && u.Role == models.RoleAdmin {
		updates["owner_id"] = input.value(input.OwnerID)
	}
	if len(updates) > 0 {
		if err := h.db(c).Model(&models.Bus{}).Where("bus_id = ?", bus.BusID).Updates(updates).Error; err != nil {
			respondError(c, apperr.Server(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus updated successfully"})
}

func (h *Handler) DeleteBus(c *gin.Context) {
	if err := h.Dispatch.DeleteBus(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted successfully"})
}

func (h *Handler) loadBus(c *gin.Context, id string) (*models.Bus, error) {
	var bus models.Bus
	if err := h.db(c).Where("bus_id = ?", id).Take(&bus).Error; err != nil {
		return nil, apperr.FromDB(err, "Bus not found")
	}
	return &bus, nil
}

func ownsBus(u *models.User, bus *models.Bus) error {
	if u != nil && u.Role == models.RoleOwner && bus.OwnerID != u.ID {
		return apperr.Forbidden("You do not own bus %s", bus.BusID)
	}
	return nil
}
