package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SlotStatus string

const (
	SlotFree     SlotStatus = "free"
	SlotOccupied SlotStatus = "occupied"
)

// Slot is one numbered parking space. Slot numbers run 1..N, are assigned
// once at initialization and never change while the system runs.
type Slot struct {
	Number    int         `json:"number"`
	Status    SlotStatus  `json:"status"`
	Plate     null.String `json:"plate"`
	UpdatedAt time.Time   `json:"updated_at"`
}
