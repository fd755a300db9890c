package service

import (
	"sync"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
)

// tallySweepThreshold bounds the in-flight tally map. Past this size every
// Observe call also sweeps expired entries.
const tallySweepThreshold = 1024

type tally struct {
	count     int
	firstSeen time.Time
}

// ConfidenceVoter turns the noisy stream of per-frame plate sightings into
// confirmed identity events. A plate must be seen quorum times inside the
// TTL window before it is trusted; a lapsed window restarts the count from
// zero. After each confirmation the plate enters a cooldown so a vehicle
// idling in front of the camera does not toggle entry/exit frame after
// frame.
//
// The voter also tracks which plates are currently parked: a confirmed
// sighting of a parked plate is an exit, anything else is an entry. This is
// the only component that decides "this is really plate X arriving or
// leaving"; downstream code trusts a ConfirmedEvent unconditionally.
type ConfidenceVoter struct {
	mu        sync.Mutex
	quorum    int
	ttl       time.Duration
	threshold float64
	cooldown  time.Duration

	tallies map[string]tally
	parked  map[string]bool
	muted   map[string]time.Time
}

func NewConfidenceVoter(quorum int, ttl time.Duration, threshold float64, cooldown time.Duration) *ConfidenceVoter {
	if quorum < 1 {
		quorum = 1
	}
	return &ConfidenceVoter{
		quorum:    quorum,
		ttl:       ttl,
		threshold: threshold,
		cooldown:  cooldown,
		tallies:   make(map[string]tally),
		parked:    make(map[string]bool),
		muted:     make(map[string]time.Time),
	}
}

// Observe feeds one sighting into the tally for the plate. It returns a
// ConfirmedEvent exactly once per reached quorum, nil otherwise. Time flows
// from the observation timestamps, which keeps the voter deterministic
// under test.
func (v *ConfidenceVoter) Observe(plate string, confidence float64, ts time.Time) *domain.ConfirmedEvent {
	if confidence < v.threshold {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if until, ok := v.muted[plate]; ok {
		if ts.Before(until) {
			return nil
		}
		delete(v.muted, plate)
	}

	t, ok := v.tallies[plate]
	if !ok || ts.Sub(t.firstSeen) > v.ttl {
		// Fresh window; a lapsed quorum attempt starts over from zero.
		t = tally{firstSeen: ts}
	}
	t.count++

	if t.count < v.quorum {
		v.tallies[plate] = t
		if len(v.tallies) > tallySweepThreshold {
			v.sweepLocked(ts)
		}
		return nil
	}

	delete(v.tallies, plate)
	if v.cooldown > 0 {
		v.muted[plate] = ts.Add(v.cooldown)
	}

	kind := domain.EventEntry
	if v.parked[plate] {
		kind = domain.EventExit
	}
	return &domain.ConfirmedEvent{Plate: plate, Kind: kind, Timestamp: ts}
}

// MarkParked records that the plate's entry was accepted by the ledger, so
// further confirmations for it are treated as exits.
func (v *ConfidenceVoter) MarkParked(plate string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.parked[plate] = true
}

// MarkExited clears the parked marker after a completed exit.
func (v *ConfidenceVoter) MarkExited(plate string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.parked, plate)
}

func (v *ConfidenceVoter) sweepLocked(now time.Time) {
	for plate, t := range v.tallies {
		if now.Sub(t.firstSeen) > v.ttl {
			delete(v.tallies, plate)
		}
	}
	for plate, until := range v.muted {
		if !now.Before(until) {
			delete(v.muted, plate)
		}
	}
}
