package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
)

type sessionRepository struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[int64]domain.VehicleSession
}

// NewSessionRepository returns an in-memory SessionRepository with
// monotonically increasing ids.
func NewSessionRepository() repository.SessionRepository {
	return &sessionRepository{nextID: 1, sessions: make(map[int64]domain.VehicleSession)}
}

func (r *sessionRepository) Create(_ context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.Plate == session.Plate && existing.Status == domain.SessionParked {
			return nil, repository.ErrDuplicateEntry
		}
	}

	now := time.Now().UTC()
	session.ID = r.nextID
	r.nextID++
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return session, nil
}

func (r *sessionRepository) FindByID(_ context.Context, id int64) (*domain.VehicleSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *sessionRepository) FindActiveByPlate(_ context.Context, plate string) (*domain.VehicleSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.sessions {
		if session.Plate == plate && session.Status == domain.SessionParked {
			s := session
			return &s, nil
		}
	}
	return nil, repository.ErrNoActiveSession
}

func (r *sessionRepository) FindAllActive(_ context.Context) ([]domain.VehicleSession, error) {
	return r.findSorted(func(s domain.VehicleSession) bool { return s.Status == domain.SessionParked }), nil
}

func (r *sessionRepository) FindAll(_ context.Context) ([]domain.VehicleSession, error) {
	return r.findSorted(func(domain.VehicleSession) bool { return true }), nil
}

func (r *sessionRepository) Update(_ context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	session.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = *session
	return session, nil
}

func (r *sessionRepository) findSorted(keep func(domain.VehicleSession) bool) []domain.VehicleSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sessions []domain.VehicleSession
	for _, session := range r.sessions {
		if keep(session) {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].EntryTime.Equal(sessions[j].EntryTime) {
			return sessions[i].EntryTime.After(sessions[j].EntryTime)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions
}
