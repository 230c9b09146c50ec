package reconcile

import (
	"context"
	"log"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxLookBack   = 5000
	defaultProgressEvery = 100
)

// FetchFunc retrieves one record by id. Returning an error or a nil record
// marks the id as absent; the scan skips it and keeps going.
type FetchFunc func(ctx context.Context, id uint64) (domain.Record, error)

// ProgressFunc is invoked at coarse intervals during a long scan.
type ProgressFunc func(scanned uint32, remaining uint64)

type ScanOptions struct {
	// MaxLookBack caps the number of ids visited before the scan gives up
	// and marks the result partial. Zero selects DefaultMaxLookBack.
	MaxLookBack uint32
	// BatchSize is the number of lookups issued in parallel. Zero or one
	// scans strictly serially.
	BatchSize     int
	Progress      ProgressFunc
	ProgressEvery uint32
}

type ScanResult struct {
	Tallies map[uint64]*domain.ParticipantTally
	Scanned uint32
	// Partial is set when the look-back cap was hit or the context was
	// cancelled before the oldest epoch of interest was fully covered.
	Partial bool
}

// Scan walks record ids from latestID down to 1, classifies each record into
// the epoch window containing its completion height and tallies the
// verifier's participation. Lookups within a batch run in parallel, but
// results are applied in strictly descending id order so the early exit below
// lowerBound stays sound: record heights are non-increasing as ids decrease,
// so the first record older than every window of interest ends the scan.
func Scan(ctx context.Context, latestID, lowerBound uint64, windows map[uint64]domain.Window,
	verifier string, fetch FetchFunc, opts ScanOptions) (*ScanResult, error) {

	result := &ScanResult{Tallies: make(map[uint64]*domain.ParticipantTally, len(windows))}
	for epoch := range windows {
		result.Tallies[epoch] = &domain.ParticipantTally{}
	}
	if latestID == 0 {
		return result, nil // empty sequence
	}

	maxLookBack := opts.MaxLookBack
	if maxLookBack == 0 {
		maxLookBack = DefaultMaxLookBack
	}
	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	progressEvery := opts.ProgressEvery
	if progressEvery == 0 {
		progressEvery = defaultProgressEvery
	}

	id := latestID
	for id >= 1 {
		if ctx.Err() != nil {
			result.Partial = true
			return result, nil
		}
		if result.Scanned >= maxLookBack {
			log.Printf("[WARN] scan: reached look-back cap of [%d] records at id [%d].", maxLookBack, id)
			result.Partial = true
			return result, nil
		}

		n := batchSize
		if uint64(n) > id {
			n = int(id)
		}
		if remaining := maxLookBack - result.Scanned; uint32(n) > remaining {
			n = int(remaining)
		}

		records := make([]domain.Record, n)
		group, groupCtx := errgroup.WithContext(ctx)
		for i := 0; i < n; i++ {
			group.Go(func() error {
				record, err := fetch(groupCtx, id-uint64(i))
				if err != nil {
					// absent or unavailable, skip the id either way
					return nil
				}
				records[i] = record
				return nil
			})
		}
		_ = group.Wait()

		// apply in descending id order only
		for i := 0; i < n; i++ {
			result.Scanned++
			if opts.Progress != nil && result.Scanned%progressEvery == 0 {
				opts.Progress(result.Scanned, id-uint64(i)-1)
			}
			record := records[i]
			if record == nil {
				continue
			}
			if record.CompletionHeight() < lowerBound {
				return result, nil // predates every window of interest
			}
			epoch, ok := classify(record.CompletionHeight(), windows)
			if !ok {
				continue // epoch not requested by the caller
			}
			tally := result.Tallies[epoch]
			tally.Total++
			if record.Participated(verifier) {
				tally.Participated++
			}
		}
		id -= uint64(n)
	}
	return result, nil
}

// classify finds the unique window containing the height. Windows are
// disjoint by construction.
func classify(height uint64, windows map[uint64]domain.Window) (uint64, bool) {
	for epoch, window := range windows {
		if window.Contains(height) {
			return epoch, true
		}
	}
	return 0, false
}
