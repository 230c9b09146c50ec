package reconcile

import "context"

const initialProbe = 16

// FindLatest returns the highest id for which existsAt reports true, given a
// densely populated sequence starting at 1. It doubles a probe until the
// sequence ends and then binary-searches the bracket, so the number of remote
// lookups stays logarithmic in the sequence length.
//
// A transient lookup failure is indistinguishable from true absence here;
// existsAt must report false in both cases. That can make the result
// undershoot but never overshoot.
func FindLatest(ctx context.Context, existsAt func(ctx context.Context, id uint64) bool) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !existsAt(ctx, 1) {
		return 0, nil // empty sequence, valid outcome
	}

	low := uint64(1)
	high := uint64(initialProbe)
	for existsAt(ctx, high) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		low = high
		high *= 2
	}

	// invariant: low exists, high does not
	for high-low > 1 {
		mid := low + (high-low)/2
		if existsAt(ctx, mid) {
			low = mid
		} else {
			high = mid
		}
	}
	return low, nil
}
