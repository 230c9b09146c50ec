package reconcile

import (
	"testing"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowsFor_GivenCurrentEpoch_ThenWindowContainsCurrentHeight(t *testing.T) {
	for _, currentHeight := range []uint64{0, 1, 99, 100, 950, 123456789} {
		windows, err := WindowsFor([]uint64{currentHeight / 100}, currentHeight, 100, currentHeight/100)
		require.NoError(t, err)
		window := windows[currentHeight/100]
		assert.True(t, window.Contains(currentHeight), "window %+v does not contain height %d", window, currentHeight)
	}
}

func TestWindowsFor_GivenThreeEpochs_ThenExpectedRanges(t *testing.T) {
	windows, err := WindowsFor([]uint64{7, 8, 9}, 950, 100, 9)
	require.NoError(t, err)

	assert.Equal(t, domain.Window{Start: 700, End: 799}, windows[7])
	assert.Equal(t, domain.Window{Start: 800, End: 899}, windows[8])
	assert.Equal(t, domain.Window{Start: 900, End: 999}, windows[9])
}

func TestWindowsFor_GivenManyEpochs_ThenDisjointAndOrdered(t *testing.T) {
	epochs := []uint64{3, 4, 5, 6, 7, 8, 9}
	windows, err := WindowsFor(epochs, 987654, 321, 3076)
	require.NoError(t, err)

	for i := 1; i < len(epochs); i++ {
		previous := windows[epochs[i-1]]
		current := windows[epochs[i]]
		assert.Equal(t, previous.End+1, current.Start, "windows not contiguous")
		assert.Less(t, previous.End, current.Start, "older epoch must cover lower heights")
	}
}

func TestWindowsFor_GivenZeroEpochLength_ThenConfigurationError(t *testing.T) {
	_, err := WindowsFor([]uint64{1}, 1000, 0, 10)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWindowsFor_GivenFutureEpoch_ThenConfigurationError(t *testing.T) {
	_, err := WindowsFor([]uint64{11}, 1000, 100, 10)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWindowsFor_GivenEpochBeforeGenesis_ThenOmitted(t *testing.T) {
	windows, err := WindowsFor([]uint64{0, 1, 2}, 250, 100, 2)
	require.NoError(t, err)

	assert.Len(t, windows, 3) // height 250 covers epochs 0..2 exactly

	windows, err = WindowsFor([]uint64{0, 1, 2, 3}, 350, 100, 3)
	require.NoError(t, err)
	assert.Len(t, windows, 4)

	windows, err = WindowsFor([]uint64{5, 6, 7}, 250, 100, 50)
	require.NoError(t, err)
	assert.Empty(t, windows) // all requested windows precede genesis
}
