package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/metrics"
	"github.com/pkg/errors"
)

// StateReader is the read-only view of the remote ledger the engine needs.
// Lookups for missing records must return domain.ErrNotFound.
type StateReader interface {
	LatestBlockHeight(ctx context.Context) (uint64, error)
	SigningSession(ctx context.Context, chain string, id uint64) (*domain.SigningSession, error)
	Poll(ctx context.Context, chain string, id uint64) (*domain.Poll, error)
	RewardsParams(ctx context.Context, chain string) (*domain.RewardsParams, error)
}

// PriceSource annotates the reward estimate with a USD figure. Optional, a
// failed or missing quote never fails the report.
type PriceSource interface {
	TokenPrice(ctx context.Context) (float64, error)
}

type Config struct {
	MaxLookBack uint32
	BatchSize   int
	// ExpectedActiveVerifiers splits the pool's per-epoch reward into a
	// per-verifier share. The contract only exposes the pool total.
	ExpectedActiveVerifiers uint32
	// Progress receives coarse scan updates per record kind. Optional.
	Progress func(kind string, scanned uint32, remaining uint64)
}

// Engine produces reconciliation reports. All scan state is request scoped,
// concurrent reports for different verifiers or chains share nothing mutable.
type Engine struct {
	reader        StateReader
	prices        PriceSource
	engineMetrics *metrics.Metrics
	config        Config
}

func NewEngine(reader StateReader, prices PriceSource, m *metrics.Metrics, config Config) *Engine {
	if config.ExpectedActiveVerifiers == 0 {
		config.ExpectedActiveVerifiers = 1
	}
	return &Engine{
		reader:        reader,
		prices:        prices,
		engineMetrics: m,
		config:        config,
	}
}

// VerifierReport reconciles the verifier's participation over the most recent
// epochCount epochs and estimates the pending reward. A report is always
// returned unless the request itself is invalid; per-record remote failures
// are absorbed during the scan.
func (e *Engine) VerifierReport(ctx context.Context, chain, verifier string, epochCount uint32) (*domain.ReconciliationReport, error) {
	if chain == "" || verifier == "" {
		return nil, errors.Wrap(domain.ErrConfiguration, "chain and verifier are required")
	}
	if epochCount == 0 {
		epochCount = 1
	}
	started := time.Now()

	params, err := e.reader.RewardsParams(ctx, chain)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rewards params for chain [%s]", chain)
	}
	if params.EpochLength == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "rewards pool reports zero epoch length")
	}

	height, err := e.reader.LatestBlockHeight(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading latest block height")
	}
	e.engineMetrics.SetSourceHeight(height)

	currentEpoch := height / params.EpochLength
	epochs := epochsOfInterest(currentEpoch, epochCount)
	windows, err := WindowsFor(epochs, height, params.EpochLength, currentEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "computing epoch windows")
	}
	lowerBound := oldestWindowStart(windows)

	sessions, err := e.scanSessions(ctx, chain, verifier, windows, lowerBound)
	if err != nil {
		return nil, errors.Wrap(err, "scanning signing sessions")
	}
	polls, err := e.scanPolls(ctx, chain, verifier, windows, lowerBound)
	if err != nil {
		return nil, errors.Wrap(err, "scanning polls")
	}

	var unpaidEpochs uint64
	if currentEpoch > params.LastDistributionEpoch {
		unpaidEpochs = currentEpoch - params.LastDistributionEpoch
	}
	rewardPerVerifier := params.RewardsPerEpoch / float64(e.config.ExpectedActiveVerifiers)

	report, err := Evaluate(mergeTallies(sessions.Tallies, polls.Tallies), epochs, params.Threshold, unpaidEpochs, rewardPerVerifier)
	if err != nil {
		return nil, errors.Wrap(err, "evaluating tallies")
	}
	report.Partial = sessions.Partial || polls.Partial

	if e.prices != nil && report.EstimatedPendingReward > 0 {
		price, err := e.prices.TokenPrice(ctx)
		if err != nil {
			log.Printf("[WARN] engine: price quote unavailable: %v", err)
		} else {
			report.EstimatedPendingUsd = report.EstimatedPendingReward * price
		}
	}

	e.engineMetrics.ObserveReportDuration(time.Since(started))
	return report, nil
}

func (e *Engine) scanSessions(ctx context.Context, chain, verifier string, windows map[uint64]domain.Window, lowerBound uint64) (*ScanResult, error) {
	fetch := func(ctx context.Context, id uint64) (domain.Record, error) {
		e.engineMetrics.IncRemoteLookups()
		session, err := e.reader.SigningSession(ctx, chain, id)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, domain.ErrNotFound
		}
		return session, nil
	}
	latest, err := FindLatest(ctx, exists(fetch))
	if err != nil {
		return nil, err
	}
	e.engineMetrics.SetLatestSessionID(latest)
	return e.scan(ctx, "session", latest, lowerBound, windows, verifier, fetch)
}

func (e *Engine) scanPolls(ctx context.Context, chain, verifier string, windows map[uint64]domain.Window, lowerBound uint64) (*ScanResult, error) {
	fetch := func(ctx context.Context, id uint64) (domain.Record, error) {
		e.engineMetrics.IncRemoteLookups()
		poll, err := e.reader.Poll(ctx, chain, id)
		if err != nil {
			return nil, err
		}
		if poll == nil {
			return nil, domain.ErrNotFound
		}
		return poll, nil
	}
	latest, err := FindLatest(ctx, exists(fetch))
	if err != nil {
		return nil, err
	}
	e.engineMetrics.SetLatestPollID(latest)
	return e.scan(ctx, "poll", latest, lowerBound, windows, verifier, fetch)
}

func (e *Engine) scan(ctx context.Context, kind string, latest, lowerBound uint64,
	windows map[uint64]domain.Window, verifier string, fetch FetchFunc) (*ScanResult, error) {

	var progress ProgressFunc
	if e.config.Progress != nil {
		progress = func(scanned uint32, remaining uint64) {
			e.config.Progress(kind, scanned, remaining)
		}
	}
	result, err := Scan(ctx, latest, lowerBound, windows, verifier, fetch, ScanOptions{
		MaxLookBack: e.config.MaxLookBack,
		BatchSize:   e.config.BatchSize,
		Progress:    progress,
	})
	if err != nil {
		return nil, err
	}
	e.engineMetrics.AddScannedRecords(result.Scanned)
	return result, nil
}

// exists adapts a record fetch into the point-existence probe the locator
// needs. Any failure counts as absence so the located maximum never
// overshoots.
func exists(fetch FetchFunc) func(ctx context.Context, id uint64) bool {
	return func(ctx context.Context, id uint64) bool {
		record, err := fetch(ctx, id)
		return err == nil && record != nil
	}
}

func epochsOfInterest(currentEpoch uint64, count uint32) []uint64 {
	first := uint64(0)
	if uint64(count) <= currentEpoch {
		first = currentEpoch - uint64(count) + 1
	}
	epochs := make([]uint64, 0, count)
	for epoch := first; epoch <= currentEpoch; epoch++ {
		epochs = append(epochs, epoch)
	}
	return epochs
}

func oldestWindowStart(windows map[uint64]domain.Window) uint64 {
	var lowest uint64
	first := true
	for _, window := range windows {
		if first || window.Start < lowest {
			lowest = window.Start
			first = false
		}
	}
	return lowest
}

func mergeTallies(left, right map[uint64]*domain.ParticipantTally) map[uint64]*domain.ParticipantTally {
	merged := make(map[uint64]*domain.ParticipantTally, len(left))
	for epoch, tally := range left {
		merged[epoch] = &domain.ParticipantTally{Total: tally.Total, Participated: tally.Participated}
	}
	for epoch, tally := range right {
		if existing, ok := merged[epoch]; ok {
			existing.Total += tally.Total
			existing.Participated += tally.Participated
		} else {
			merged[epoch] = &domain.ParticipantTally{Total: tally.Total, Participated: tally.Participated}
		}
	}
	return merged
}
