package api

import (
	"net/http"

	"github.com/Amanev2005/SmartParkingSystem/internal/api/handler"
	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRouter(
	parkingService *service.ParkingService,
	paymentService *service.PaymentService,
	detectionService *service.DetectionService,
	lprService *service.LPRService,
	normalizer *domain.PlateNormalizer,
	hub *handler.Hub,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	wsHandler := handler.NewWebSocketHandler(hub)
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		obsH := handler.NewObservationHandler(detectionService)
		api.POST("/observations", obsH.PostObservation)

		parkingH := handler.NewParkingHandler(parkingService, normalizer)
		api.POST("/entry", parkingH.VehicleEntry)
		api.POST("/exit", parkingH.VehicleExit)
		api.GET("/slots", parkingH.GetSlots)
		api.GET("/sessions", parkingH.GetSessions)
		api.GET("/sessions/:id", parkingH.GetSessionByID)

		paymentH := handler.NewPaymentHandler(paymentService)
		api.POST("/sessions/:id/pin", paymentH.IssuePin)
		api.POST("/sessions/:id/payment", paymentH.VerifyPayment)

		if lprService != nil && lprService.Enabled() {
			lprH := handler.NewLPRHandler(lprService, detectionService)
			api.POST("/lpr/process-image", lprH.ProcessImage)
		}
	}
	return r
}
