package iot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type barrierCommand struct {
	Command   string `json:"command"`
	Plate     string `json:"plate"`
	RequestID string `json:"request_id"`
	IssuedAt  string `json:"issued_at"`
}

// BarrierCommander publishes gate-open commands to the barrier controllers
// over MQTT. It implements service.GateController; publish failures are
// logged and swallowed so a broker outage never blocks a session
// transition.
type BarrierCommander struct {
	client     *iotdataplane.Client
	entryTopic string
	exitTopic  string
}

func NewBarrierCommander(client *iotdataplane.Client, entryTopic, exitTopic string) *BarrierCommander {
	return &BarrierCommander{client: client, entryTopic: entryTopic, exitTopic: exitTopic}
}

func (b *BarrierCommander) OpenGate(ctx context.Context, kind domain.EventKind, plate string) {
	topic := b.entryTopic
	if kind == domain.EventExit {
		topic = b.exitTopic
	}
	if err := b.publish(ctx, topic, plate); err != nil {
		log.Error().Err(err).Str("topic", topic).Str("plate", plate).Msg("failed to publish gate command")
	}
}

func (b *BarrierCommander) publish(ctx context.Context, topic, plate string) error {
	payload, err := json.Marshal(barrierCommand{
		Command:   "open",
		Plate:     plate,
		RequestID: uuid.NewString(),
		IssuedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling gate command: %w", err)
	}

	_, err = b.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing gate command: %w", err)
	}
	return nil
}
