package controllers

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"bus_dispatch/internal/apperr"
	"bus_dispatch/internal/models"
)

// TerminalResponse mirrors models.Terminal with the location as GeoJSON.
type TerminalResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Location    json.RawMessage `json:"location"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toTerminalResponse(t models.Terminal) TerminalResponse {
	loc, err := convertWKBToGeoJSON(t.Location)
	if err != nil {
		logrus.WithError(err).WithField("terminal_id", t.ID).Warn("terminal: stored location is not valid WKB")
	}
	if loc == nil {
		loc = json.RawMessage("null")
	}
	return TerminalResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Location:    loc,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

var errNotPoint = errors.New("location must be a GeoJSON Point")

// parseLocation accepts a GeoJSON Point, either inline or as a JSON string,
// and returns it as WKB.
func parseLocation(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = json.RawMessage(s)
	}
	var g geom.T
	if err := gjson.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	p, ok := g.(*geom.Point)
	if !ok || p.Empty() {
		return nil, errNotPoint
	}
	lng, lat := p.X(), p.Y()
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return nil, errors.New("location coordinates out of range")
	}
	return wkb.Marshal(p, binary.LittleEndian)
}

func convertWKBToGeoJSON(b []byte) (json.RawMessage, error) {
	if len(b) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return gjson.Marshal(g)
}

type terminalInput struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Location    json.RawMessage `json:"location"`
}

// CreateTerminal registers a dispatch point. Terminal ids are chosen by the
// admin (STATION_A) because starters and queue entries reference them.
func (h *Handler) CreateTerminal(c *gin.Context) {
	var input terminalInput
	if !bindJSON(c, &input) {
		return
	}
	id := strings.ToUpper(strings.TrimSpace(input.ID))
	if id == "" || strings.TrimSpace(input.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields: id and name"})
		return
	}
	loc, err := parseLocation(input.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid location: " + err.Error()})
		return
	}

	terminal := models.Terminal{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Location:    loc,
	}
	if err := h.db(c).Create(&terminal).Error; err != nil {
		if apperr.IsDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Terminal " + id + " already exists"})
			return
		}
		respondError(c, apperr.Server(err))
		return
	}
	c.JSON(http.StatusCreated, toTerminalResponse(terminal))
}

func (h *Handler) ListTerminals(c *gin.Context) {
	var terminals []models.Terminal
	if err := h.db(c).Order("id ASC").Find(&terminals).Error; err != nil {
		respondError(c, apperr.Server(err))
		return
	}
	out := make([]TerminalResponse, 0, len(terminals))
	for _, t := range terminals {
		out = append(out, toTerminalResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTerminal(c *gin.Context) {
	var terminal models.Terminal
	if err := h.db(c).Where("id = ?", c.Param("id")).Take(&terminal).Error; err != nil {
		respondError(c, apperr.FromDB(err, "Terminal not found"))
		return
	}
	c.JSON(http.StatusOK, toTerminalResponse(terminal))
}
