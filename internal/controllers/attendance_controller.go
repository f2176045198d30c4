package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

// MarkAttendance lets crew record their own daily attendance.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var input struct {
		Status string `json:"status"`
		Date   string `json:"date"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if strings.TrimSpace(input.Status) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}
	u := caller(c)
	now := h.now()
	record := models.AttendanceRecord{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		Role:       u.Role,
		Status:     input.Status,
		Date:       firstNonEmpty(input.Date, now.In(h.Dispatch.Location()).Format("2006-01-02")),
		RecordedAt: now,
	}
	if err := h.db(c).Create(&record).Error; err != nil {
		respondError(c, apperr.FromDB(err, "Attendance record not found"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Attendance marked successfully", "attendanceId": record.ID})
}

// AttendanceLogs lists self-reported attendance, optionally for ?userId= and
// ?date=.
func (h *Handler) AttendanceLogs(c *gin.Context) {
	q := h.db(c).Order("recorded_at DESC")
	if userID := c.Query("userId"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if date := c.Query("date"); date != "" {
		q = q.Where("date = ?", date)
	}
	logs := []models.AttendanceRecord{}
	if err := q.Find(&logs).Error; err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, logs)
}

// MyPunches returns the caller's punch history, newest first.
func (h *Handler) MyPunches(c *gin.Context) {
	punches := []models.Punch{}
	err := h.db(c).Where("user_id = ?", caller(c).ID).Order("timestamp DESC").Find(&punches).Error
	if err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": punches})
}

// Punch records a punch_in or punch_out for a staff member. Punches must
// alternate, starting with punch_in.
func (h *Handler) Punch(c *gin.Context) {
	var input struct {
		UserID string `json:"userId"`
		Action string `json:"action"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if input.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}
	action := models.PunchAction(input.Action)
	if action != models.PunchIn && action != models.PunchOut {
		c.JSON(http.StatusBadRequest, gin.H{"message": `Invalid action specified. Must be "punch_in" or "punch_out"`})
		return
	}

	err := h.db(c).Transaction(func(tx *gorm.DB) error {
		// Lock the user row so concurrent punches for one user serialise.
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", input.UserID).Take(&user).Error; err != nil {
			return apperr.FromDB(err, "User not found")
		}

		var last models.Punch
		err := tx.Where("user_id = ?", user.ID).Order("timestamp DESC").Take(&last).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if action == models.PunchOut {
				return apperr.InvalidState("Cannot punch out without first punching in")
			}
		case err != nil:
			return err
		case last.Action == models.PunchIn && action == models.PunchIn:
			return apperr.InvalidState("User is already punched in")
		case last.Action == models.PunchOut && action == models.PunchOut:
			return apperr.InvalidState("User is already punched out")
		}

		now := h.now()
		if err == nil && !now.After(last.Timestamp) {
			now = last.Timestamp.Add(time.Millisecond)
		}
		return tx.Create(&models.Punch{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Action:    action,
			Timestamp: now,
		}).Error
	})
	if err != nil {
		respondError(c, apperr.FromDB(err, "User not found"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Successfully recorded " + input.Action + " for user " + input.UserID})
}
