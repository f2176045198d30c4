package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
	"bus_dispatch/internal/sequence"
)

type registerInput struct {
	Name          string   `json:"name"`
	Password      string   `json:"password"`
	Role          string   `json:"role"`
	Phone         string   `json:"phone"`
	AssignedBuses []string `json:"assignedBuses"`
	Status        string   `json:"status"`
	TerminalID    string   `json:"terminalId"`
}

// Register creates an account with a generated id. While the users table is
// empty an anonymous caller may create the first Admin; afterwards only an
// Admin may register users.
func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Password == "" || strings.TrimSpace(input.Name) == "" || input.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: password, name, or role"})
		return
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role: " + input.Role})
		return
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		respondError(c, apperr.Server(err))
		return
	}

	var user models.User
	err = h.db(c).Transaction(func(tx *gorm.DB) error {
		if err := h.authorizeRegistration(c, tx, role); err != nil {
			return err
		}
		alloc, err := sequence.Users(role)
		if err != nil {
			return apperr.Validation("Invalid role: %s", input.Role)
		}
		id, err := alloc.Next(tx)
		if err != nil {
			return err
		}
		user = models.User{
			ID:             id,
			Name:           strings.TrimSpace(input.Name),
			Role:           role,
			Phone:          input.Phone,
			HashedPassword: hashed,
			Status:         firstNonEmpty(input.Status, models.UserActive),
			AssignedBuses:  input.AssignedBuses,
			TerminalID:     input.TerminalID,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if apperr.IsDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "User ID generation conflict occurred"})
			return
		}
		respondError(c, apperr.FromDB(err, "User not found"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "User registered successfully",
		"userId":      user.ID,
		"generatedId": user.ID,
	})
}

func (h *Handler) authorizeRegistration(c *gin.Context, tx *gorm.DB, role models.Role) error {
	if u := caller(c); u != nil {
		if u.Role != models.RoleAdmin {
			return apperr.Forbidden("Forbidden: You do not have the required permissions")
		}
		return nil
	}
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Unauthorized("No token provided, authorization denied")
	}
	if role != models.RoleAdmin {
		return apperr.Forbidden("The first account must be an Admin")
	}
	return nil
}

type loginInput struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Login checks the password and issues a session token.
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if !bindJSON(c, &input) {
		return
	}
	if input.ID == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: id and password"})
		return
	}

	var user models.User
	if err := h.db(c).Where("id = ?", strings.ToUpper(strings.TrimSpace(input.ID))).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		respondError(c, apperr.Server(err))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if user.Status != models.UserActive {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Account is not active"})
		return
	}

	token, err := h.Tokens.GenerateToken(&user)
	if err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role, "userId": user.ID})
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	u := caller(c)
	buses := u.AssignedBuses
	if buses == nil {
		buses = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            u.ID,
		"name":          u.Name,
		"role":          u.Role,
		"phone":         u.Phone,
		"status":        u.Status,
		"assignedBuses": buses,
		"terminalId":    u.TerminalID,
	})
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
