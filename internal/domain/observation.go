package domain

import "time"

// Observation is a single raw plate sighting from the detection pipeline.
// It is ephemeral: consumed by the confidence voter and discarded after it
// contributed to a tally or timed out.
type Observation struct {
	PlateText  string    `json:"plate_text"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

type EventKind string

const (
	EventEntry EventKind = "entry"
	EventExit  EventKind = "exit"
)

// ConfirmedEvent is an identity the voter vouches for. Downstream components
// trust it unconditionally.
type ConfirmedEvent struct {
	Plate     string    `json:"plate"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// ObservationDTO is the wire shape posted by the camera loop. Timestamp is
// optional; the server clock is used when it is absent.
type ObservationDTO struct {
	PlateText  string  `json:"plate_text" binding:"required"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp,omitempty"`
}

// DetectionMessage is the tagged SQS payload emitted by the edge camera
// units. Unrecognized message types are rejected before they reach the core.
type DetectionMessage struct {
	MessageType string  `json:"message_type"`
	CameraID    string  `json:"camera_id"`
	PlateText   string  `json:"plate_text"`
	Confidence  float64 `json:"confidence"`
	CapturedAt  string  `json:"captured_at"`
}

const DetectionMessageType = "plate_detection"
