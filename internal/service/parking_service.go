package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

// ParkedTracker is told which plates currently hold a PARKED session. The
// confidence voter implements it; tests pass a stub.
type ParkedTracker interface {
	MarkParked(plate string)
	MarkExited(plate string)
}

// GateController opens the physical gate on confirmed entry/exit.
// Implementations must not block the transition: a gate failure is logged,
// never propagated.
type GateController interface {
	OpenGate(ctx context.Context, kind domain.EventKind, plate string)
}

// Notifier pushes transition notifications to connected dashboards.
type Notifier interface {
	Broadcast(n domain.Notification)
}

// ParkingService is the vehicle session ledger. It owns the PARKED → EXITED
// state machine per plate and is the only component that mutates sessions
// on entry/exit. One mutex serializes both producers (camera intake and
// request handlers) against the shared slot inventory.
type ParkingService struct {
	mu        sync.Mutex
	allocator *SlotAllocator
	sessions  repository.SessionRepository

	ratePerMinute float64
	minimumCharge float64

	tracker  ParkedTracker
	gate     GateController
	notifier Notifier
}

func NewParkingService(
	allocator *SlotAllocator,
	sessions repository.SessionRepository,
	ratePerMinute, minimumCharge float64,
) *ParkingService {
	return &ParkingService{
		allocator:     allocator,
		sessions:      sessions,
		ratePerMinute: ratePerMinute,
		minimumCharge: minimumCharge,
	}
}

// WithTracker wires the parked-plate tracker (normally the voter).
func (s *ParkingService) WithTracker(t ParkedTracker) *ParkingService {
	s.tracker = t
	return s
}

// WithGate wires the barrier command publisher.
func (s *ParkingService) WithGate(g GateController) *ParkingService {
	s.gate = g
	return s
}

// WithNotifier wires the websocket broadcast hub.
func (s *ParkingService) WithNotifier(n Notifier) *ParkingService {
	s.notifier = n
	return s
}

// Restore re-seeds the tracker from the store after a restart so the voter
// keeps treating vehicles that are already inside as parked.
func (s *ParkingService) Restore(ctx context.Context) error {
	if s.tracker == nil {
		return nil
	}
	active, err := s.sessions.FindAllActive(ctx)
	if err != nil {
		return fmt.Errorf("restoring parked plates: %w", err)
	}
	for _, session := range active {
		s.tracker.MarkParked(session.Plate)
	}
	return nil
}

// HandleEntry processes a confirmed entry for a normalized plate. A plate
// that already holds a PARKED session is a no-op: the existing session is
// returned and the second return is false. Duplicate camera confirmations
// are expected and must not allocate a second slot.
func (s *ParkingService) HandleEntry(ctx context.Context, plate string, at time.Time) (*domain.VehicleSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.sessions.FindActiveByPlate(ctx, plate)
	if err == nil {
		log.Info().Str("plate", plate).Int64("session_id", existing.ID).Msg("entry for already-parked plate, ignoring")
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNoActiveSession) {
		return nil, false, fmt.Errorf("checking active session for %s: %w", plate, err)
	}

	slotNumber, err := s.allocator.Allocate(ctx, plate, at)
	if err != nil {
		if errors.Is(err, ErrNoSlotsAvailable) {
			log.Warn().Str("plate", plate).Msg("entry rejected, facility full")
			s.notify(domain.Notification{
				Type:      domain.NotifyEntryRejected,
				Plate:     plate,
				Reason:    "no slots available",
				Timestamp: at,
			})
		}
		return nil, false, err
	}

	session := &domain.VehicleSession{
		Plate:         plate,
		SlotNumber:    slotNumber,
		EntryTime:     at,
		Status:        domain.SessionParked,
		PaymentStatus: domain.PaymentPending,
	}
	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		// Give the slot back; the session is the source of truth.
		if relErr := s.allocator.Release(ctx, slotNumber, at); relErr != nil {
			log.Error().Err(relErr).Int("slot", slotNumber).Msg("failed to roll back slot allocation")
		}
		return nil, false, fmt.Errorf("creating session for %s: %w", plate, err)
	}

	if s.tracker != nil {
		s.tracker.MarkParked(plate)
	}
	s.openGate(ctx, domain.EventEntry, plate)
	s.notify(domain.Notification{
		Type:       domain.NotifyEntryConfirmed,
		Plate:      plate,
		SlotNumber: slotNumber,
		SessionID:  created.ID,
		Timestamp:  at,
	})

	log.Info().Str("plate", plate).Int("slot", slotNumber).Int64("session_id", created.ID).Msg("vehicle entered")
	return created, true, nil
}

// HandleExit processes a confirmed exit. The charge is computed from the
// recorded entry time and the event time; the slot is released and payment
// moves to pending. A plate with no PARKED session fails with ErrNotParked
// and nothing changes.
func (s *ParkingService) HandleExit(ctx context.Context, plate string, at time.Time) (*domain.VehicleSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.FindActiveByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSession) {
			return nil, ErrNotParked
		}
		return nil, fmt.Errorf("finding active session for %s: %w", plate, err)
	}

	minutes, charge, err := ComputeCharge(session.EntryTime, at, s.ratePerMinute, s.minimumCharge)
	if err != nil {
		return nil, err
	}

	session.ExitTime = null.TimeFrom(at)
	session.DurationMinutes = null.IntFrom(minutes)
	session.Charge = null.FloatFrom(charge)
	session.Status = domain.SessionExited
	session.PaymentStatus = domain.PaymentPending

	updated, err := s.sessions.Update(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("completing session %d: %w", session.ID, err)
	}

	if err := s.allocator.Release(ctx, session.SlotNumber, at); err != nil {
		// The session is already EXITED; an inconsistent slot row is
		// recoverable, a resurrected session is not.
		log.Error().Err(err).Int("slot", session.SlotNumber).Int64("session_id", session.ID).Msg("failed to release slot on exit")
	}

	if s.tracker != nil {
		s.tracker.MarkExited(plate)
	}
	s.openGate(ctx, domain.EventExit, plate)
	s.notify(domain.Notification{
		Type:       domain.NotifyExitConfirmed,
		Plate:      plate,
		SlotNumber: updated.SlotNumber,
		SessionID:  updated.ID,
		Charge:     charge,
		Timestamp:  at,
	})

	log.Info().Str("plate", plate).Int64("session_id", updated.ID).
		Int64("duration_minutes", minutes).Float64("charge", charge).Msg("vehicle exited")
	return updated, nil
}

// IsParked reports whether the plate currently holds a PARKED session.
func (s *ParkingService) IsParked(ctx context.Context, plate string) (bool, error) {
	_, err := s.sessions.FindActiveByPlate(ctx, plate)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNoActiveSession) {
		return false, nil
	}
	return false, err
}

// Slots returns the read-only slot snapshot for presentation.
func (s *ParkingService) Slots() []domain.Slot {
	return s.allocator.Snapshot()
}

// Sessions returns the full history, most recent entry first.
func (s *ParkingService) Sessions(ctx context.Context) ([]domain.VehicleSession, error) {
	return s.sessions.FindAll(ctx)
}

func (s *ParkingService) SessionByID(ctx context.Context, id int64) (*domain.VehicleSession, error) {
	return s.sessions.FindByID(ctx, id)
}

func (s *ParkingService) openGate(ctx context.Context, kind domain.EventKind, plate string) {
	if s.gate != nil {
		s.gate.OpenGate(ctx, kind, plate)
	}
}

func (s *ParkingService) notify(n domain.Notification) {
	if s.notifier == nil {
		return
	}
	n.ID = uuid.NewString()
	s.notifier.Broadcast(n)
}
