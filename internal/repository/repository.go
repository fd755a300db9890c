package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveSession = errors.New("no active session for the given plate")

// SlotRepository persists the slot inventory. Every occupancy change goes
// through UpdateStatus so the durable view always matches the allocator.
type SlotRepository interface {
	// EnsureInventory creates slots 1..count when they do not exist yet.
	// Existing rows are left untouched so occupancy survives a restart.
	EnsureInventory(ctx context.Context, count int) error
	FindAll(ctx context.Context) ([]domain.Slot, error)
	FindByNumber(ctx context.Context, number int) (*domain.Slot, error)
	UpdateStatus(ctx context.Context, number int, status domain.SlotStatus, plate *string, at time.Time) error
}

// SessionRepository persists vehicle sessions. Session ids are assigned by
// the store and increase monotonically.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error)
	FindByID(ctx context.Context, id int64) (*domain.VehicleSession, error)
	FindActiveByPlate(ctx context.Context, plate string) (*domain.VehicleSession, error)
	FindAllActive(ctx context.Context) ([]domain.VehicleSession, error)
	// FindAll returns the full session history, most recent entry first.
	FindAll(ctx context.Context) ([]domain.VehicleSession, error)
	Update(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error)
}
