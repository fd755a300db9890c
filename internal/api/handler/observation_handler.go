package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/gin-gonic/gin"
)

type ObservationHandler struct {
	detection *service.DetectionService
}

func NewObservationHandler(ds *service.DetectionService) *ObservationHandler {
	return &ObservationHandler{detection: ds}
}

// POST /api/observations
// One raw camera sighting. 202 means the sighting was absorbed into a vote
// tally (or muted); 200 carries the confirmed event it completed.
func (h *ObservationHandler) PostObservation(c *gin.Context) {
	var dto domain.ObservationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ts := time.Now().UTC()
	if dto.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, dto.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be RFC3339"})
			return
		}
		ts = parsed.UTC()
	}

	event, err := h.detection.Ingest(c.Request.Context(), dto.PlateText, dto.Confidence, ts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoSlotsAvailable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "event": event})
		case errors.Is(err, service.ErrNotParked), errors.Is(err, service.ErrInvalidInterval):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "event": event})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process observation", "details": err.Error()})
		}
		return
	}

	if event == nil {
		c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed", "event": event})
}
