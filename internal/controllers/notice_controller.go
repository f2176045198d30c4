package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

type noticeInput struct {
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	TargetRoles []string `json:"targetRoles"`
}

func (h *Handler) CreateNotice(c *gin.Context) {
	var input noticeInput
	if !bindJSON(c, &input) {
		return
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" || len(input.TargetRoles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: title, message, and targetRoles are required"})
		return
	}
	roles := make([]models.Role, 0, len(input.TargetRoles))
	for _, raw := range input.TargetRoles {
		role, err := models.ParseRole(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role in targetRoles: " + raw})
			return
		}
		roles = append(roles, role)
	}

	notice := models.Notice{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Message:     input.Message,
		TargetRoles: roles,
		CreatedBy:   caller(c).ID,
		CreatedAt:   h.now(),
	}
	if err := h.db(c).Create(&notice).Error; err != nil {
		respondError(c, apperr.FromDB(err, "Notice not found"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Notice created successfully", "noticeId": notice.ID})
}

// ListNotices returns the notices addressed to the caller's role, newest
// first. Admins see every notice.
func (h *Handler) ListNotices(c *gin.Context) {
	var all []models.Notice
	if err := h.db(c).Order("created_at DESC").Find(&all).Error; err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	role := caller(c).Role
	notices := []models.Notice{}
	for _, n := range all {
		if role == models.RoleAdmin || targets(n, role) {
			notices = append(notices, n)
		}
	}
	c.JSON(http.StatusOK, notices)
}

func (h *Handler) DeleteNotice(c *gin.Context) {
	res := h.db(c).Where("id = ?", c.Param("id")).Delete(&models.Notice{})
	if res.Error != nil {
		respondError(c, apperr.Server(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notice deleted successfully"})
}

func targets(n models.Notice, role models.Role) bool {
	for _, r := range n.TargetRoles {
		if r == role {
			return true
		}
	}
	return false
}
