package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v4"
)

type slotState struct {
	occupied bool
	plate    string
}

// SlotAllocator owns the fixed slot inventory. The in-memory table is the
// authority for occupancy; every change is written through to the
// SlotRepository so the durable view tracks it. All mutation happens under
// the allocator mutex, so two concurrent Allocate calls can never hand out
// the same slot.
type SlotAllocator struct {
	mu    sync.Mutex
	repo  repository.SlotRepository
	slots []slotState // index i holds slot number i+1
}

// NewSlotAllocator seeds the inventory (slots 1..capacity) and restores
// occupancy from the store so a restart does not lose parked vehicles.
func NewSlotAllocator(ctx context.Context, repo repository.SlotRepository, capacity int) (*SlotAllocator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("slot capacity must be positive, got %d", capacity)
	}
	if err := repo.EnsureInventory(ctx, capacity); err != nil {
		return nil, fmt.Errorf("seeding slot inventory: %w", err)
	}

	a := &SlotAllocator{repo: repo, slots: make([]slotState, capacity)}

	persisted, err := repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("restoring slot occupancy: %w", err)
	}
	for _, slot := range persisted {
		if slot.Number < 1 || slot.Number > capacity {
			continue
		}
		if slot.Status == domain.SlotOccupied {
			a.slots[slot.Number-1] = slotState{occupied: true, plate: slot.Plate.ValueOrZero()}
		}
	}
	return a, nil
}

func (a *SlotAllocator) Capacity() int {
	return len(a.slots)
}

// Allocate picks the lowest-numbered free slot, binds the plate to it and
// marks it occupied.
func (a *SlotAllocator) Allocate(ctx context.Context, plate string, at time.Time) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.slots {
		if a.slots[i].occupied {
			continue
		}
		number := i + 1
		a.slots[i] = slotState{occupied: true, plate: plate}
		if err := a.repo.UpdateStatus(ctx, number, domain.SlotOccupied, &plate, at); err != nil {
			a.slots[i] = slotState{}
			return 0, fmt.Errorf("persisting slot %d allocation: %w", number, err)
		}
		return number, nil
	}
	return 0, ErrNoSlotsAvailable
}

// Release frees the slot. Releasing a free slot is a caller bug and fails
// loudly instead of silently succeeding.
func (a *SlotAllocator) Release(ctx context.Context, number int, at time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if number < 1 || number > len(a.slots) {
		return fmt.Errorf("%w: slot %d does not exist", ErrSlotNotOccupied, number)
	}
	state := a.slots[number-1]
	if !state.occupied {
		return ErrSlotNotOccupied
	}

	a.slots[number-1] = slotState{}
	if err := a.repo.UpdateStatus(ctx, number, domain.SlotFree, nil, at); err != nil {
		// Keep the in-memory release; the session side has already moved
		// on and the durable row will be corrected on the next transition.
		log.Error().Err(err).Int("slot", number).Msg("failed to persist slot release")
	}
	return nil
}

// BoundPlate reports the plate currently bound to the slot, if any.
func (a *SlotAllocator) BoundPlate(number int) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if number < 1 || number > len(a.slots) {
		return "", false
	}
	state := a.slots[number-1]
	if !state.occupied {
		return "", false
	}
	return state.plate, true
}

// Snapshot returns a read-only copy of the inventory, ordered by number.
func (a *SlotAllocator) Snapshot() []domain.Slot {
	a.mu.Lock()
	defer a.mu.Unlock()

	slots := make([]domain.Slot, len(a.slots))
	for i, state := range a.slots {
		slot := domain.Slot{Number: i + 1, Status: domain.SlotFree}
		if state.occupied {
			slot.Status = domain.SlotOccupied
			slot.Plate = null.StringFrom(state.plate)
		}
		slots[i] = slot
	}
	return slots
}
