package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(ps *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// POST /api/sessions/:id/pin
// Issues (or reissues) the payment PIN for a billed session. The PIN comes
// back in the response for the kiosk to print; it is never exposed on the
// session resource itself.
func (h *PaymentHandler) IssuePin(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	pin, err := h.paymentService.IssuePin(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrAlreadyPaid), errors.Is(err, service.ErrNotBilled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue pin", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id, "pin": pin})
}

// POST /api/sessions/:id/payment
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var dto domain.VerifyPaymentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	session, err := h.paymentService.Verify(c.Request.Context(), id, dto.PIN)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrInvalidPin):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPinMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyPaid), errors.Is(err, service.ErrNoPinIssued):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify payment", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}
