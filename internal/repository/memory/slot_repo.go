package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"gopkg.in/guregu/null.v4"
)

type slotRepository struct {
	mu    sync.RWMutex
	slots map[int]domain.Slot
}

// NewSlotRepository returns an in-memory SlotRepository. Used by the test
// suite and by deployments that run without a database.
func NewSlotRepository() repository.SlotRepository {
	return &slotRepository{slots: make(map[int]domain.Slot)}
}

func (r *slotRepository) EnsureInventory(_ context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for n := 1; n <= count; n++ {
		if _, ok := r.slots[n]; !ok {
			r.slots[n] = domain.Slot{Number: n, Status: domain.SlotFree, UpdatedAt: time.Now().UTC()}
		}
	}
	return nil
}

func (r *slotRepository) FindAll(_ context.Context) ([]domain.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slots := make([]domain.Slot, 0, len(r.slots))
	for n := 1; n <= len(r.slots); n++ {
		if slot, ok := r.slots[n]; ok {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (r *slotRepository) FindByNumber(_ context.Context, number int) (*domain.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.slots[number]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &slot, nil
}

func (r *slotRepository) UpdateStatus(_ context.Context, number int, status domain.SlotStatus, plate *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[number]
	if !ok {
		return repository.ErrNotFound
	}
	slot.Status = status
	if plate != nil {
		slot.Plate = null.StringFrom(*plate)
	} else {
		slot.Plate = null.String{}
	}
	slot.UpdatedAt = at
	r.slots[number] = slot
	return nil
}
