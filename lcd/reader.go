package lcd

import (
	"context"
	"sort"
	"strconv"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/pkg/errors"
)

// Contracts are the addresses the dashboard needs per connected chain. The
// multisig prover runs signing sessions, the voting verifier runs polls and
// the rewards contract keeps the pool the chain pays verifiers from.
type Contracts struct {
	MultisigProver string
	VotingVerifier string
	Rewards        string
}

// Reader exposes typed contract lookups on top of the raw LCD client.
type Reader struct {
	client *Client
	chains map[string]Contracts
}

func NewReader(client *Client, chains map[string]Contracts) (*Reader, error) {
	if len(chains) == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "no chains configured")
	}
	for name, contracts := range chains {
		if contracts.MultisigProver == "" || contracts.VotingVerifier == "" || contracts.Rewards == "" {
			return nil, errors.Wrapf(domain.ErrConfiguration, "missing contract addresses for chain [%s]", name)
		}
	}
	return &Reader{client: client, chains: chains}, nil
}

func (r *Reader) LatestBlockHeight(ctx context.Context) (uint64, error) {
	return r.client.LatestBlockHeight(ctx)
}

func (r *Reader) Chains() []string {
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type signingSessionResponse struct {
	ID          string            `json:"id"`
	State       string            `json:"state"`
	CompletedAt string            `json:"completed_at"`
	ExpiresAt   string            `json:"expires_at"`
	Signatures  map[string]string `json:"signatures"`
}

func (r *Reader) SigningSession(ctx context.Context, chain string, id uint64) (*domain.SigningSession, error) {
	contracts, err := r.contracts(chain)
	if err != nil {
		return nil, err
	}
	query := map[string]any{"signing_session": map[string]uint64{"session_id": id}}
	var response signingSessionResponse
	if err := r.client.SmartQuery(ctx, contracts.MultisigProver, query, &response); err != nil {
		return nil, err
	}
	return convertSigningSession(&response)
}

func convertSigningSession(response *signingSessionResponse) (*domain.SigningSession, error) {
	sessionID, err := parseOptionalUint(response.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing session id [%s]", response.ID)
	}
	completedAt, err := parseOptionalUint(response.CompletedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing completed_at [%s]", response.CompletedAt)
	}
	expiresAt, err := parseOptionalUint(response.ExpiresAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing expires_at [%s]", response.ExpiresAt)
	}
	signers := make([]string, 0, len(response.Signatures))
	for signer := range response.Signatures {
		signers = append(signers, signer)
	}
	sort.Strings(signers)
	return &domain.SigningSession{
		SessionID:   sessionID,
		CompletedAt: completedAt,
		ExpiresAt:   expiresAt,
		Completed:   response.State == "completed",
		Signers:     signers,
	}, nil
}

type pollResponse struct {
	PollID    string            `json:"poll_id"`
	Status    string            `json:"status"`
	ExpiresAt string            `json:"expires_at"`
	Votes     map[string]string `json:"votes"`
}

func (r *Reader) Poll(ctx context.Context, chain string, id uint64) (*domain.Poll, error) {
	contracts, err := r.contracts(chain)
	if err != nil {
		return nil, err
	}
	query := map[string]any{"poll": map[string]uint64{"poll_id": id}}
	var response pollResponse
	if err := r.client.SmartQuery(ctx, contracts.VotingVerifier, query, &response); err != nil {
		return nil, err
	}
	return convertPoll(&response)
}

func convertPoll(response *pollResponse) (*domain.Poll, error) {
	pollID, err := parseOptionalUint(response.PollID)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing poll id [%s]", response.PollID)
	}
	expiresAt, err := parseOptionalUint(response.ExpiresAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing expires_at [%s]", response.ExpiresAt)
	}
	voters := make([]string, 0, len(response.Votes))
	for voter := range response.Votes {
		voters = append(voters, voter)
	}
	sort.Strings(voters)
	return &domain.Poll{
		PollID:    pollID,
		ExpiresAt: expiresAt,
		Finished:  response.Status == "finished",
		Voters:    voters,
	}, nil
}

type rewardsPoolResponse struct {
	Balance                string    `json:"balance"`
	EpochDuration          string    `json:"epoch_duration"`
	RewardsPerEpoch        string    `json:"rewards_per_epoch"`
	ParticipationThreshold [2]string `json:"participation_threshold"`
	LastDistributionEpoch  string    `json:"last_distribution_epoch"`
}

// RewardsParams reads epoch length, qualification threshold and the pool's
// per-epoch reward from the rewards contract. The threshold arrives as a
// [numerator, denominator] fraction.
func (r *Reader) RewardsParams(ctx context.Context, chain string) (*domain.RewardsParams, error) {
	contracts, err := r.contracts(chain)
	if err != nil {
		return nil, err
	}
	query := map[string]any{
		"rewards_pool": map[string]any{
			"pool_id": map[string]string{
				"chain_name": chain,
				"contract":   contracts.VotingVerifier,
			},
		},
	}
	var response rewardsPoolResponse
	if err := r.client.SmartQuery(ctx, contracts.Rewards, query, &response); err != nil {
		return nil, errors.Wrapf(err, "querying rewards pool for chain [%s]", chain)
	}
	return convertRewardsParams(&response)
}

func convertRewardsParams(response *rewardsPoolResponse) (*domain.RewardsParams, error) {
	epochLength, err := parseOptionalUint(response.EpochDuration)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing epoch_duration [%s]", response.EpochDuration)
	}
	rewardsPerEpoch, err := parseOptionalUint(response.RewardsPerEpoch)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing rewards_per_epoch [%s]", response.RewardsPerEpoch)
	}
	lastDistribution, err := parseOptionalUint(response.LastDistributionEpoch)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing last_distribution_epoch [%s]", response.LastDistributionEpoch)
	}
	numerator, err := parseOptionalUint(response.ParticipationThreshold[0])
	if err != nil {
		return nil, errors.Wrapf(err, "parsing threshold numerator [%s]", response.ParticipationThreshold[0])
	}
	denominator, err := parseOptionalUint(response.ParticipationThreshold[1])
	if err != nil {
		return nil, errors.Wrapf(err, "parsing threshold denominator [%s]", response.ParticipationThreshold[1])
	}
	if denominator == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "threshold denominator is zero")
	}
	return &domain.RewardsParams{
		EpochLength:           epochLength,
		Threshold:             float64(numerator) / float64(denominator),
		RewardsPerEpoch:       float64(rewardsPerEpoch),
		LastDistributionEpoch: lastDistribution,
	}, nil
}

func (r *Reader) contracts(chain string) (Contracts, error) {
	contracts, ok := r.chains[chain]
	if !ok {
		return Contracts{}, errors.Wrapf(domain.ErrConfiguration, "unknown chain [%s]", chain)
	}
	return contracts, nil
}

// parseOptionalUint treats the empty string as zero. Cosmos JSON serializes
// Uint64 values as strings.
func parseOptionalUint(value string) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseUint(value, 10, 64)
}
