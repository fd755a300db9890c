package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/service"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
)

// SQSConsumer long-polls the detection queue fed by the edge camera units
// and pushes each sighting through the detection pipeline. A message is
// deleted once handled; a processing failure leaves it in flight so it
// redelivers after the visibility timeout.
type SQSConsumer struct {
	client    *sqs.Client
	queueURL  string
	detection *service.DetectionService
}

func NewSQSConsumer(client *sqs.Client, queueURL string, detection *service.DetectionService) *SQSConsumer {
	return &SQSConsumer{client: client, queueURL: queueURL, detection: detection}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	log.Info().Str("queue", c.queueURL).Msg("detection consumer listening")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("detection consumer stopping")
			return
		default:
			result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("failed to receive detection messages")
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			for _, message := range result.Messages {
				if message.Body == nil {
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}
				if err := c.handleMessage(ctx, *message.Body); err != nil {
					log.Warn().Err(err).Msg("detection message failed, leaving for redelivery")
					continue
				}
				c.deleteMessage(ctx, message.ReceiptHandle)
			}
		}
	}
}

// handleMessage parses one queue payload and feeds it to the pipeline.
// Malformed payloads and unknown message types return nil so they are
// deleted instead of poisoning the queue. An invalid plate is the same: the
// camera sent garbage and a retry cannot fix it.
func (c *SQSConsumer) handleMessage(ctx context.Context, body string) error {
	var msg domain.DetectionMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		log.Warn().Err(err).Msg("discarding malformed detection message")
		return nil
	}
	if msg.MessageType != domain.DetectionMessageType {
		log.Warn().Str("message_type", msg.MessageType).Msg("discarding unrecognized message type")
		return nil
	}

	ts := time.Now().UTC()
	if msg.CapturedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, msg.CapturedAt); err == nil {
			ts = parsed.UTC()
		}
	}

	_, err := c.detection.Ingest(ctx, msg.PlateText, msg.Confidence, ts)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlate) {
			return nil
		}
		// Transient rejections (facility full, exit race) are final for
		// this sighting too; the camera keeps sending fresh ones.
		if errors.Is(err, service.ErrNoSlotsAvailable) || errors.Is(err, service.ErrNotParked) || errors.Is(err, service.ErrInvalidInterval) {
			log.Warn().Err(err).Str("camera_id", msg.CameraID).Str("plate", msg.PlateText).Msg("confirmed event rejected by ledger")
			return nil
		}
		return fmt.Errorf("ingesting detection from camera %s: %w", msg.CameraID, err)
	}
	return nil
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete detection message")
	}
}
