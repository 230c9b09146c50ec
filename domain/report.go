package domain

// Window is the inclusive block height range covered by one epoch.
type Window struct {
	Start uint64
	End   uint64
}

func (w Window) Contains(height uint64) bool {
	return height >= w.Start && height <= w.End
}

// ParticipantTally accumulates per-epoch participation during a scan.
type ParticipantTally struct {
	Total        uint32
	Participated uint32
}

// EpochPerformance is one row of the final report.
type EpochPerformance struct {
	Epoch        uint64  `json:"epoch"`
	Total        uint32  `json:"total"`
	Participated uint32  `json:"participated"`
	Rate         float64 `json:"rate"`
	Qualified    bool    `json:"qualified"`
}

// ReconciliationReport is the aggregate result for one verifier. Epochs are
// ordered oldest to newest. The pending reward is an extrapolated estimate,
// the ledger remains the source of truth for actual distribution amounts.
type ReconciliationReport struct {
	Epochs                 []EpochPerformance `json:"epochs"`
	QualifiedCount         uint32             `json:"qualifiedCount"`
	EstimatedPendingReward float64            `json:"estimatedPendingReward"`
	EstimatedPendingUsd    float64            `json:"estimatedPendingUsd,omitempty"`
	Partial                bool               `json:"partial"`
}

// RewardsParams are the reward accounting parameters read from the rewards
// contract pool. Nothing here is hardcoded in the engine.
type RewardsParams struct {
	EpochLength           uint64
	Threshold             float64
	RewardsPerEpoch       float64
	LastDistributionEpoch uint64
}
