package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

// ListUsers returns all users, optionally filtered by ?role=.
func (h *Handler) ListUsers(c *gin.Context) {
	q := h.db(c).Order("id ASC")
	if raw := c.Query("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role: " + raw})
			return
		}
		q = q.Where("role = ?", role)
	}
	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.db(c).Where("id = ?", c.Param("id")).Take(&user).Error; err != nil {
		respondError(c, apperr.FromDB(err, "User not found"))
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserInput struct {
	Name          *string   `json:"name"`
	Phone         *string   `json:"phone"`
	Status        *string   `json:"status"`
	AssignedBuses *[]string `json:"assignedBuses"`
	TerminalID    *string   `json:"terminalId"`
	Password      *string   `json:"password"`
}

// UpdateUser edits profile fields. The id and role are fixed at registration.
func (h *Handler) UpdateUser(c *gin.Context) {
	var input updateUserInput
	if !bindJSON(c, &input) {
		return
	}

	var user models.User
	if err := h.db(c).Where("id = ?", c.Param("id")).Take(&user).Error; err != nil {
		respondError(c, apperr.FromDB(err, "User not found"))
		return
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Status != nil {
		if *input.Status != models.UserActive && *input.Status != models.UserInactive {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status: " + *input.Status})
			return
		}
		updates["status"] = *input.Status
	}
	if input.TerminalID != nil {
		updates["terminal_id"] = *input.TerminalID
	}
	if input.Password != nil {
		if *input.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password cannot be empty"})
			return
		}
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			respondError(c, apperr.Server(err))
			return
		}
		updates["hashed_password"] = hashed
	}
	if input.AssignedBuses != nil {
		// Updates with a map skips serializers, so go through the struct.
		user.AssignedBuses = *input.AssignedBuses
		if err := h.db(c).Model(&user).Select("assigned_buses").Updates(&user).Error; err != nil {
			respondError(c, apperr.Server(err))
			return
		}
	}
	if len(updates) > 0 {
		if err := h.db(c).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			respondError(c, apperr.Server(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if u := caller(c); u != nil && u.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You cannot delete your own account"})
		return
	}
	res := h.db(c).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		respondError(c, apperr.Server(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
