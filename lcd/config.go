package lcd

import (
	"strings"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/pkg/errors"
)

// ParseChainContracts builds the chain contract map from configuration
// entries of the form "name:multisigProver:votingVerifier". The rewards
// contract lives on the hub and is shared by all chains.
func ParseChainContracts(specs []string, rewardsContract string) (map[string]Contracts, error) {
	if rewardsContract == "" {
		return nil, errors.Wrap(domain.ErrConfiguration, "rewards contract address is required")
	}
	chains := make(map[string]Contracts, len(specs))
	for _, spec := range specs {
		parts := strings.Split(strings.TrimSpace(spec), ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, errors.Wrapf(domain.ErrConfiguration, "invalid chain spec [%s], expected name:multisigProver:votingVerifier", spec)
		}
		if _, exists := chains[parts[0]]; exists {
			return nil, errors.Wrapf(domain.ErrConfiguration, "duplicate chain [%s]", parts[0])
		}
		chains[parts[0]] = Contracts{
			MultisigProver: parts[1],
			VotingVerifier: parts[2],
			Rewards:        rewardsContract,
		}
	}
	return chains, nil
}
