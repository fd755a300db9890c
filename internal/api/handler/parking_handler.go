package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/gin-gonic/gin"
)

type ParkingHandler struct {
	parkingService *service.ParkingService
	normalizer     *domain.PlateNormalizer
}

func NewParkingHandler(ps *service.ParkingService, normalizer *domain.PlateNormalizer) *ParkingHandler {
	return &ParkingHandler{parkingService: ps, normalizer: normalizer}
}

// POST /api/entry
// Manual entry from the operator console. Unlike the camera path, a plate
// that is already parked is a conflict here: the operator asked for a new
// session and must be told one already exists.
func (h *ParkingHandler) VehicleEntry(c *gin.Context) {
	var dto domain.PlateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	plate, ok := h.normalizer.Normalize(dto.Plate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidPlate.Error()})
		return
	}

	session, created, err := h.parkingService.HandleEntry(c.Request.Context(), plate, time.Now().UTC())
	if err != nil {
		if errors.Is(err, service.ErrNoSlotsAvailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record entry", "details": err.Error()})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "vehicle is already parked", "session": session})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /api/exit
func (h *ParkingHandler) VehicleExit(c *gin.Context) {
	var dto domain.PlateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	plate, ok := h.normalizer.Normalize(dto.Plate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidPlate.Error()})
		return
	}

	session, err := h.parkingService.HandleExit(c.Request.Context(), plate, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotParked):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidInterval):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record exit", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /api/slots
func (h *ParkingHandler) GetSlots(c *gin.Context) {
	slots := h.parkingService.Slots()
	free := 0
	for _, slot := range slots {
		if slot.Status == domain.SlotFree {
			free++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"slots":    slots,
		"capacity": len(slots),
		"free":     free,
	})
}

// GET /api/sessions
func (h *ParkingHandler) GetSessions(c *gin.Context) {
	sessions, err := h.parkingService.Sessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/sessions/:id
func (h *ParkingHandler) GetSessionByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	session, err := h.parkingService.SessionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}
