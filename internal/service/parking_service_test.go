package service

import (
	"context"
	"testing"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackerSpy struct {
	parked map[string]bool
}

func newTrackerSpy() *trackerSpy {
	return &trackerSpy{parked: make(map[string]bool)}
}

func (t *trackerSpy) MarkParked(plate string) { t.parked[plate] = true }
func (t *trackerSpy) MarkExited(plate string) { delete(t.parked, plate) }

type notifierSpy struct {
	notifications []domain.Notification
}

func (n *notifierSpy) Broadcast(notification domain.Notification) {
	n.notifications = append(n.notifications, notification)
}

func newTestParkingService(t *testing.T, capacity int) (*ParkingService, *trackerSpy, *notifierSpy) {
	t.Helper()
	allocator, err := NewSlotAllocator(context.Background(), memory.NewSlotRepository(), capacity)
	require.NoError(t, err)

	tracker := newTrackerSpy()
	notifier := &notifierSpy{}
	ps := NewParkingService(allocator, memory.NewSessionRepository(), 5.0, 10.0).
		WithTracker(tracker).
		WithNotifier(notifier)
	return ps, tracker, notifier
}

func TestHandleEntryCreatesSession(t *testing.T) {
	ctx := context.Background()
	ps, tracker, notifier := newTestParkingService(t, 3)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	session, created, err := ps.HandleEntry(ctx, "KA01AB1234", now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "KA01AB1234", session.Plate)
	assert.Equal(t, 1, session.SlotNumber)
	assert.Equal(t, domain.SessionParked, session.Status)
	assert.Equal(t, domain.PaymentPending, session.PaymentStatus)
	assert.True(t, tracker.parked["KA01AB1234"])

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, domain.NotifyEntryConfirmed, notifier.notifications[0].Type)
	assert.NotEmpty(t, notifier.notifications[0].ID)
}

func TestHandleEntryIdempotentForParkedPlate(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newTestParkingService(t, 3)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first, created, err := ps.HandleEntry(ctx, "KA01AB1234", now)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := ps.HandleEntry(ctx, "KA01AB1234", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// No second slot was consumed.
	slots := ps.Slots()
	occupied := 0
	for _, slot := range slots {
		if slot.Status == domain.SlotOccupied {
			occupied++
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestHandleEntryCapacityExhausted(t *testing.T) {
	ctx := context.Background()
	ps, _, notifier := newTestParkingService(t, 2)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := ps.HandleEntry(ctx, "KA01AB1234", now)
	require.NoError(t, err)
	_, _, err = ps.HandleEntry(ctx, "MH12CD5678", now)
	require.NoError(t, err)

	_, _, err = ps.HandleEntry(ctx, "DL03EF9012", now)
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)

	last := notifier.notifications[len(notifier.notifications)-1]
	assert.Equal(t, domain.NotifyEntryRejected, last.Type)
	assert.Equal(t, "DL03EF9012", last.Plate)
}

func TestHandleExitComputesChargeAndFreesSlot(t *testing.T) {
	ctx := context.Background()
	ps, tracker, notifier := newTestParkingService(t, 3)
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := ps.HandleEntry(ctx, "KA01AB1234", entry)
	require.NoError(t, err)

	session, err := ps.HandleExit(ctx, "KA01AB1234", entry.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExited, session.Status)
	assert.Equal(t, domain.PaymentPending, session.PaymentStatus)
	assert.Equal(t, int64(10), session.DurationMinutes.ValueOrZero())
	assert.Equal(t, 50.0, session.Charge.ValueOrZero())
	assert.False(t, tracker.parked["KA01AB1234"])

	// The slot is free for the next vehicle.
	next, created, err := ps.HandleEntry(ctx, "MH12CD5678", entry.Add(11*time.Minute))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, session.SlotNumber, next.SlotNumber)

	last := notifier.notifications[len(notifier.notifications)-2]
	assert.Equal(t, domain.NotifyExitConfirmed, last.Type)
	assert.Equal(t, 50.0, last.Charge)
}

func TestHandleExitShortStayMinimumCharge(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newTestParkingService(t, 3)
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := ps.HandleEntry(ctx, "KA01AB1234", entry)
	require.NoError(t, err)

	session, err := ps.HandleExit(ctx, "KA01AB1234", entry.Add(59*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), session.DurationMinutes.ValueOrZero())
	assert.Equal(t, 10.0, session.Charge.ValueOrZero())
}

func TestHandleExitUnknownPlate(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newTestParkingService(t, 3)

	_, err := ps.HandleExit(ctx, "KA01AB1234", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotParked)
}

func TestHandleExitInvalidIntervalAbortsCleanly(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newTestParkingService(t, 3)
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := ps.HandleEntry(ctx, "KA01AB1234", entry)
	require.NoError(t, err)

	_, err = ps.HandleExit(ctx, "KA01AB1234", entry.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	// The session is still PARKED and a later valid exit works.
	parked, err := ps.IsParked(ctx, "KA01AB1234")
	require.NoError(t, err)
	assert.True(t, parked)

	session, err := ps.HandleExit(ctx, "KA01AB1234", entry.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExited, session.Status)
}

func TestSessionsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newTestParkingService(t, 3)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := ps.HandleEntry(ctx, "KA01AB1234", base)
	require.NoError(t, err)
	_, _, err = ps.HandleEntry(ctx, "MH12CD5678", base.Add(time.Minute))
	require.NoError(t, err)

	sessions, err := ps.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "MH12CD5678", sessions[0].Plate)
	assert.Equal(t, "KA01AB1234", sessions[1].Plate)
}

func TestRestoreMarksActivePlates(t *testing.T) {
	ctx := context.Background()
	slotRepo := memory.NewSlotRepository()
	sessionRepo := memory.NewSessionRepository()

	allocator, err := NewSlotAllocator(ctx, slotRepo, 3)
	require.NoError(t, err)
	ps := NewParkingService(allocator, sessionRepo, 5.0, 10.0)
	_, _, err = ps.HandleEntry(ctx, "KA01AB1234", time.Now().UTC())
	require.NoError(t, err)

	// Simulated restart: new service over the same stores.
	allocator2, err := NewSlotAllocator(ctx, slotRepo, 3)
	require.NoError(t, err)
	tracker := newTrackerSpy()
	ps2 := NewParkingService(allocator2, sessionRepo, 5.0, 10.0).WithTracker(tracker)

	require.NoError(t, ps2.Restore(ctx))
	assert.True(t, tracker.parked["KA01AB1234"])
}
