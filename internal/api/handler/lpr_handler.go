package handler

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/gin-gonic/gin"
)

type LPRHandler struct {
	lprService *service.LPRService
	detection  *service.DetectionService
}

func NewLPRHandler(lpr *service.LPRService, ds *service.DetectionService) *LPRHandler {
	return &LPRHandler{lprService: lpr, detection: ds}
}

// POST /api/lpr/process-image
// Runs OCR over an uploaded frame and feeds every plate-shaped candidate
// into the detection pipeline, so a frame counts as one sighting per
// candidate.
func (h *LPRHandler) ProcessImage(c *gin.Context) {
	var dto domain.LPRRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	imageBytes, err := base64.StdEncoding.DecodeString(dto.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is not valid base64"})
		return
	}

	candidates, err := h.lprService.DetectPlates(c.Request.Context(), imageBytes)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "plate recognition failed", "details": err.Error()})
		return
	}

	resp := domain.LPRResponseDTO{Candidates: candidates}
	now := time.Now().UTC()
	for _, candidate := range candidates {
		event, err := h.detection.Ingest(c.Request.Context(), candidate.PlateText, candidate.Confidence, now)
		if err != nil {
			continue
		}
		resp.Accepted++
		if event != nil && resp.Confirmed == nil {
			resp.Confirmed = event
		}
	}
	c.JSON(http.StatusOK, resp)
}
