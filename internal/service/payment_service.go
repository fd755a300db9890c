package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

var pinSpace = big.NewInt(1000000)

// PaymentService issues payment PINs for billed sessions and settles them.
// A session becomes payable once it has exited and carries a charge; a
// correct PIN moves payment from pending to paid exactly once.
type PaymentService struct {
	mu       sync.Mutex
	sessions repository.SessionRepository
	notifier Notifier
}

func NewPaymentService(sessions repository.SessionRepository) *PaymentService {
	return &PaymentService{sessions: sessions}
}

func (s *PaymentService) WithNotifier(n Notifier) *PaymentService {
	s.notifier = n
	return s
}

// IssuePin generates a fresh 6-digit PIN for a billed session and stores
// it. Reissuing replaces the previous PIN; only the latest one verifies.
func (s *PaymentService) IssuePin(ctx context.Context, sessionID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.PaymentStatus == domain.PaymentPaid {
		return "", ErrAlreadyPaid
	}
	if session.Status != domain.SessionExited || !session.Charge.Valid {
		return "", ErrNotBilled
	}

	n, err := rand.Int(rand.Reader, pinSpace)
	if err != nil {
		return "", fmt.Errorf("generating pin: %w", err)
	}
	pin := fmt.Sprintf("%06d", n.Int64())

	session.PIN = null.StringFrom(pin)
	if _, err := s.sessions.Update(ctx, session); err != nil {
		return "", fmt.Errorf("storing pin for session %d: %w", sessionID, err)
	}

	log.Info().Int64("session_id", sessionID).Msg("payment pin issued")
	return pin, nil
}

// Verify checks the submitted PIN against the one on record and marks the
// session paid on a match. Retries are unlimited; a wrong PIN changes
// nothing.
func (s *PaymentService) Verify(ctx context.Context, sessionID int64, pin string) (*domain.VehicleSession, error) {
	if !validPin(pin) {
		return nil, ErrInvalidPin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PaymentStatus == domain.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if !session.PIN.Valid {
		return nil, ErrNoPinIssued
	}
	if session.PIN.String != pin {
		log.Warn().Int64("session_id", sessionID).Msg("payment pin mismatch")
		return nil, ErrPinMismatch
	}

	session.PaymentStatus = domain.PaymentPaid
	updated, err := s.sessions.Update(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("settling session %d: %w", sessionID, err)
	}

	if s.notifier != nil {
		s.notifier.Broadcast(domain.Notification{
			ID:        uuid.NewString(),
			Type:      domain.NotifyPaymentReceived,
			Plate:     updated.Plate,
			SessionID: updated.ID,
			Charge:    updated.Charge.ValueOrZero(),
			Timestamp: updated.UpdatedAt,
		})
	}

	log.Info().Int64("session_id", sessionID).Str("plate", updated.Plate).Msg("payment received")
	return updated, nil
}

func validPin(pin string) bool {
	if len(pin) != 6 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
