package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeChargeMinimumApplies(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// 59 seconds rounds up to one minute; 1 * 5.0 is below the minimum.
	minutes, charge, err := ComputeCharge(entry, entry.Add(59*time.Second), 5.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), minutes)
	assert.Equal(t, 10.0, charge)
}

func TestComputeChargePartialMinutesRoundUp(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	minutes, charge, err := ComputeCharge(entry, entry.Add(10*time.Minute+1*time.Second), 5.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, int64(11), minutes)
	assert.Equal(t, 55.0, charge)
}

func TestComputeChargeExactMinutes(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	minutes, charge, err := ComputeCharge(entry, entry.Add(10*time.Minute), 5.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), minutes)
	assert.Equal(t, 50.0, charge)

	minutes, charge, err = ComputeCharge(entry, entry.Add(12*time.Minute), 5.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, int64(12), minutes)
	assert.Equal(t, 60.0, charge)
}

func TestComputeChargeZeroDuration(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	minutes, charge, err := ComputeCharge(entry, entry, 5.0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), minutes)
	assert.Equal(t, 10.0, charge)
}

func TestComputeChargeRoundsToCents(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, charge, err := ComputeCharge(entry, entry.Add(3*time.Minute), 3.333, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, charge)
}

func TestComputeChargeRejectsNegativeInterval(t *testing.T) {
	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, _, err := ComputeCharge(entry, entry.Add(-time.Second), 5.0, 10.0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
