package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SessionStatus string

const (
	SessionParked SessionStatus = "PARKED"
	SessionExited SessionStatus = "EXITED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// VehicleSession is the record of one vehicle's stay, from entry through
// exit and payment. Sessions are never deleted; they form the facility's
// transaction history. Exit time, charge and payment status are set once and
// never revert.
type VehicleSession struct {
	ID              int64         `json:"id"`
	Plate           string        `json:"plate"`
	SlotNumber      int           `json:"slot_number"`
	EntryTime       time.Time     `json:"entry_time"`
	ExitTime        null.Time     `json:"exit_time"`
	DurationMinutes null.Int      `json:"duration_minutes"`
	Charge          null.Float    `json:"charge"`
	Status          SessionStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	// PIN is the one-time payment code. It belongs to the session, not the
	// plate: a later visit of the same vehicle gets a fresh code.
	PIN       null.String `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PlateRequestDTO carries a manually submitted plate (operator form or API).
type PlateRequestDTO struct {
	Plate string `json:"plate" binding:"required"`
}

// VerifyPaymentDTO carries the PIN submitted against a session.
type VerifyPaymentDTO struct {
	PIN string `json:"pin" binding:"required"`
}
