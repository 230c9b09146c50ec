package reconcile

import (
	"slices"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/pkg/errors"
)

// Evaluate turns scan tallies into the final report. Epochs are reported in
// ascending order. An epoch with zero observed records never qualifies,
// missing data is not evidence of participation.
//
// The pending reward extrapolates the observed qualification rate across the
// unpaid epoch backlog. It is an estimate: the sampled window may cover fewer
// epochs than the backlog and the ledger decides actual payouts.
func Evaluate(tallies map[uint64]*domain.ParticipantTally, epochs []uint64, threshold float64,
	unpaidEpochs uint64, rewardPerEpoch float64) (*domain.ReconciliationReport, error) {

	if threshold <= 0 || threshold > 1 {
		return nil, errors.Wrapf(domain.ErrConfiguration, "threshold [%v] outside (0,1]", threshold)
	}

	sorted := slices.Clone(epochs)
	slices.Sort(sorted)

	report := &domain.ReconciliationReport{Epochs: make([]domain.EpochPerformance, 0, len(sorted))}
	for _, epoch := range sorted {
		performance := domain.EpochPerformance{Epoch: epoch}
		if tally := tallies[epoch]; tally != nil {
			performance.Total = tally.Total
			performance.Participated = tally.Participated
		}
		if performance.Total > 0 {
			performance.Rate = float64(performance.Participated) / float64(performance.Total)
			performance.Qualified = performance.Rate >= threshold
		}
		if performance.Qualified {
			report.QualifiedCount++
		}
		report.Epochs = append(report.Epochs, performance)
	}

	if len(report.Epochs) > 0 {
		qualificationRate := float64(report.QualifiedCount) / float64(len(report.Epochs))
		report.EstimatedPendingReward = qualificationRate * float64(unpaidEpochs) * rewardPerEpoch
	}
	return report, nil
}
