package service

import (
	"testing"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoterEmitsExactlyOnceAtQuorum(t *testing.T) {
	v := NewConfidenceVoter(2, 5*time.Second, 0.4, 0)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base))

	event := v.Observe("KA01AB1234", 0.9, base.Add(time.Second))
	require.NotNil(t, event)
	assert.Equal(t, "KA01AB1234", event.Plate)
	assert.Equal(t, domain.EventEntry, event.Kind)

	// The tally was consumed; the next sighting starts a fresh window.
	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(2*time.Second)))
}

func TestVoterLapsedWindowRestartsCount(t *testing.T) {
	v := NewConfidenceVoter(2, 5*time.Second, 0.4, 0)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base))
	// Second sighting lands after the TTL, so it opens a new window
	// instead of completing the old one.
	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(6*time.Second)))

	event := v.Observe("KA01AB1234", 0.9, base.Add(7*time.Second))
	require.NotNil(t, event)
}

func TestVoterIgnoresLowConfidence(t *testing.T) {
	v := NewConfidenceVoter(2, 5*time.Second, 0.4, 0)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, v.Observe("KA01AB1234", 0.39, base))
	assert.Nil(t, v.Observe("KA01AB1234", 0.39, base.Add(time.Second)))
	// Low-confidence sightings never entered the tally.
	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(2*time.Second)))

	event := v.Observe("KA01AB1234", 0.9, base.Add(3*time.Second))
	require.NotNil(t, event)
}

func TestVoterCooldownMutesPlate(t *testing.T) {
	v := NewConfidenceVoter(2, 5*time.Second, 0.4, 10*time.Second)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base))
	require.NotNil(t, v.Observe("KA01AB1234", 0.9, base.Add(time.Second)))

	// Sightings inside the cooldown are dropped entirely.
	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(3*time.Second)))
	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(9*time.Second)))

	// After the cooldown the plate votes again from zero.
	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(12*time.Second)))
	event := v.Observe("KA01AB1234", 0.9, base.Add(13*time.Second))
	require.NotNil(t, event)
}

func TestVoterParkedPlateConfirmsExit(t *testing.T) {
	v := NewConfidenceVoter(2, 5*time.Second, 0.4, 0)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	v.MarkParked("KA01AB1234")

	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base))
	event := v.Observe("KA01AB1234", 0.9, base.Add(time.Second))
	require.NotNil(t, event)
	assert.Equal(t, domain.EventExit, event.Kind)

	v.MarkExited("KA01AB1234")

	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base.Add(2*time.Second)))
	event = v.Observe("KA01AB1234", 0.9, base.Add(3*time.Second))
	require.NotNil(t, event)
	assert.Equal(t, domain.EventEntry, event.Kind)
}

func TestVoterIndependentPlates(t *testing.T) {
	v := NewConfidenceVoter(2, 5*time.Second, 0.4, 0)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, v.Observe("KA01AB1234", 0.9, base))
	assert.Nil(t, v.Observe("MH12CD5678", 0.9, base))

	require.NotNil(t, v.Observe("KA01AB1234", 0.9, base.Add(time.Second)))
	require.NotNil(t, v.Observe("MH12CD5678", 0.9, base.Add(time.Second)))
}

func TestVoterQuorumOfOne(t *testing.T) {
	v := NewConfidenceVoter(1, 5*time.Second, 0.4, 0)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	event := v.Observe("KA01AB1234", 0.9, base)
	require.NotNil(t, event)
	assert.Equal(t, domain.EventEntry, event.Kind)
}
