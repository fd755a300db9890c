package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"github.com/Amanev2005/SmartParkingSystem/internal/api"
	"github.com/Amanev2005/SmartParkingSystem/internal/api/handler"
	"github.com/Amanev2005/SmartParkingSystem/internal/config"
	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/iot"
	"github.com/Amanev2005/SmartParkingSystem/internal/logging"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository/postgresql"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Development)
	log.Info().Msg("configuration loaded")

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgresql.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database ready")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS SDK config")
	}

	sqsClient := sqs.NewFromConfig(awsCfg)
	iotDataClient := iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
		if cfg.IoTMQTTEndpoint != "" {
			endpoint := cfg.IoTMQTTEndpoint
			if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	rekognitionClient := rekognition.NewFromConfig(awsCfg)

	slotRepo := postgresql.NewPgSlotRepository(db)
	sessionRepo := postgresql.NewPgSessionRepository(db)

	hub := handler.NewHub()
	go hub.Run()

	allocator, err := service.NewSlotAllocator(context.Background(), slotRepo, cfg.SlotCount)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize slot allocator")
	}

	normalizer := domain.NewPlateNormalizer(cfg.PlateMinLength, domain.DefaultSubstitutions())
	voter := service.NewConfidenceVoter(cfg.VoteQuorum, cfg.VoteTTL, cfg.ConfidenceThreshold, cfg.ConfirmCooldown)

	parkingService := service.NewParkingService(allocator, sessionRepo, cfg.RatePerMinute, cfg.MinimumCharge).
		WithTracker(voter).
		WithNotifier(hub)
	if cfg.IoTMQTTEndpoint != "" {
		parkingService.WithGate(iot.NewBarrierCommander(iotDataClient, cfg.GateEntryTopic, cfg.GateExitTopic))
	}
	if err := parkingService.Restore(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to restore parked vehicles")
	}

	paymentService := service.NewPaymentService(sessionRepo).WithNotifier(hub)
	detectionService := service.NewDetectionService(normalizer, voter, parkingService)
	lprService := service.NewLPRService(rekognitionClient)

	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	if cfg.SQSDetectionQueueURL == "" {
		log.Warn().Msg("SQS_DETECTION_QUEUE_URL not set, detection consumer disabled")
	} else {
		consumer := iot.NewSQSConsumer(sqsClient, cfg.SQSDetectionQueueURL, detectionService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(consumerCtx)
		}()
	}

	router := api.SetupRouter(parkingService, paymentService, detectionService, lprService, normalizer, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced server shutdown")
	}

	if cfg.SQSDetectionQueueURL != "" {
		done := make(chan struct{})
		go func() {
			defer close(done)
			wg.Wait()
		}()
		select {
		case <-done:
			log.Info().Msg("detection consumer drained")
		case <-time.After(5 * time.Second):
			log.Warn().Msg("detection consumer did not stop in time")
		}
	}

	log.Info().Msg("server stopped")
}
