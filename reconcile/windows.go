package reconcile

import (
	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/pkg/errors"
)

// WindowsFor maps each requested epoch to its inclusive block height range.
// The current epoch's window starts at currentHeight rounded down to a
// multiple of epochLength; older epochs extend backwards in contiguous,
// non-overlapping steps of epochLength blocks.
//
// Epochs whose window would start before the genesis height are omitted from
// the result. Requesting a future epoch is a configuration error.
func WindowsFor(epochs []uint64, currentHeight, epochLength, currentEpoch uint64) (map[uint64]domain.Window, error) {
	if epochLength == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "epoch length must be positive")
	}

	alignedStart := currentHeight - currentHeight%epochLength
	windows := make(map[uint64]domain.Window, len(epochs))
	for _, epoch := range epochs {
		if epoch > currentEpoch {
			return nil, errors.Wrapf(domain.ErrConfiguration, "epoch [%d] is in the future (current epoch is [%d])", epoch, currentEpoch)
		}
		behind := currentEpoch - epoch
		if behind*epochLength > alignedStart {
			continue // window would precede genesis
		}
		start := alignedStart - behind*epochLength
		windows[epoch] = domain.Window{Start: start, End: start + epochLength - 1}
	}
	return windows, nil
}
