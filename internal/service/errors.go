package service

import "errors"

// Validation errors: rejected immediately, no state change.
var ErrInvalidPlate = errors.New("plate text is not a recognizable plate")
var ErrInvalidPin = errors.New("pin must be a 6-digit numeric code")

// Capacity errors: surfaced to the caller, no automatic retry.
var ErrNoSlotsAvailable = errors.New("no slots available")

// State conflicts: the caller acted on a stale view of state.
var ErrNotParked = errors.New("no parked session for the given plate")
var ErrSlotNotOccupied = errors.New("slot is not occupied")
var ErrAlreadyPaid = errors.New("session is already paid")
var ErrNoPinIssued = errors.New("no pin has been issued for the session")
var ErrPinMismatch = errors.New("pin does not match")
var ErrNotBilled = errors.New("session has no charge yet")

// Clock errors: the engine never guesses a substitute time.
var ErrInvalidInterval = errors.New("exit time precedes entry time")
