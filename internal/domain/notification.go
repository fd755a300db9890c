package domain

import "time"

type NotificationType string

const (
	NotifyEntryConfirmed  NotificationType = "entry_confirmed"
	NotifyExitConfirmed   NotificationType = "exit_confirmed"
	NotifyEntryRejected   NotificationType = "entry_rejected"
	NotifyPaymentReceived NotificationType = "payment_received"
)

// Notification is the payload broadcast to dashboard websocket clients on
// every session transition.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Plate      string           `json:"plate,omitempty"`
	SlotNumber int              `json:"slot_number,omitempty"`
	SessionID  int64            `json:"session_id,omitempty"`
	Charge     float64          `json:"charge,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}
