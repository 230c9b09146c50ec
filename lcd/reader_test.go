package lcd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContracts = map[string]Contracts{
	"ethereum": {
		MultisigProver: "axelar1prover",
		VotingVerifier: "axelar1verifier-contract",
		Rewards:        "axelar1rewards",
	},
}

func TestNewReader_GivenMissingAddresses_ThenConfigurationError(t *testing.T) {
	_, err := NewReader(&Client{}, nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewReader(&Client{}, map[string]Contracts{"ethereum": {MultisigProver: "axelar1prover"}})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestReader_GivenUnknownChain_ThenConfigurationError(t *testing.T) {
	reader, err := NewReader(&Client{endpoints: []string{"http://localhost"}}, testContracts)
	require.NoError(t, err)

	_, err = reader.SigningSession(context.Background(), "osmosis", 1)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestReader_SigningSession_GivenContractState_ThenConverted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "axelar1prover")
		_, _ = w.Write([]byte(`{"data": {
			"id": "37",
			"state": "completed",
			"completed_at": "905",
			"expires_at": "950",
			"signatures": {"axelar1bbb": "sig2", "axelar1aaa": "sig1"}
		}}`))
	}))
	defer server.Close()

	reader := newTestReader(t, server.URL)
	session, err := reader.SigningSession(context.Background(), "ethereum", 37)
	require.NoError(t, err)

	assert.Equal(t, uint64(37), session.SessionID)
	assert.Equal(t, uint64(905), session.CompletionHeight())
	assert.True(t, session.Completed)
	assert.Equal(t, []string{"axelar1aaa", "axelar1bbb"}, session.Signers)
}

func TestReader_SigningSession_GivenPendingSession_ThenExpiryHeight(t *testing.T) {
	session, err := convertSigningSession(&signingSessionResponse{
		ID:        "5",
		State:     "pending",
		ExpiresAt: "950",
	})
	require.NoError(t, err)

	assert.False(t, session.Completed)
	assert.Equal(t, uint64(950), session.CompletionHeight())
	assert.Empty(t, session.Signers)
}

func TestReader_Poll_GivenContractState_ThenConverted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "axelar1verifier-contract")
		_, _ = w.Write([]byte(`{"data": {
			"poll_id": "12",
			"status": "finished",
			"expires_at": "910",
			"votes": {"axelar1ccc": "succeeded_on_chain", "axelar1aaa": "not_found"}
		}}`))
	}))
	defer server.Close()

	reader := newTestReader(t, server.URL)
	poll, err := reader.Poll(context.Background(), "ethereum", 12)
	require.NoError(t, err)

	assert.Equal(t, uint64(12), poll.PollID)
	assert.Equal(t, uint64(910), poll.CompletionHeight())
	assert.True(t, poll.Finished)
	assert.Equal(t, []string{"axelar1aaa", "axelar1ccc"}, poll.Voters)
}

func TestReader_RewardsParams_GivenPoolState_ThenConverted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "axelar1rewards")
		_, _ = w.Write([]byte(`{"data": {
			"balance": "1000000",
			"epoch_duration": "100",
			"rewards_per_epoch": "3000",
			"participation_threshold": ["1", "2"],
			"last_distribution_epoch": "5"
		}}`))
	}))
	defer server.Close()

	reader := newTestReader(t, server.URL)
	params, err := reader.RewardsParams(context.Background(), "ethereum")
	require.NoError(t, err)

	assert.Equal(t, uint64(100), params.EpochLength)
	assert.Equal(t, 0.5, params.Threshold)
	assert.Equal(t, 3000.0, params.RewardsPerEpoch)
	assert.Equal(t, uint64(5), params.LastDistributionEpoch)
}

func TestReader_RewardsParams_GivenZeroDenominator_ThenConfigurationError(t *testing.T) {
	_, err := convertRewardsParams(&rewardsPoolResponse{
		EpochDuration:          "100",
		ParticipationThreshold: [2]string{"1", "0"},
	})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestParseChainContracts(t *testing.T) {
	chains, err := ParseChainContracts([]string{
		"ethereum:axelar1prover:axelar1verifier-contract",
		"avalanche:axelar1prover2:axelar1verifier2",
	}, "axelar1rewards")
	require.NoError(t, err)

	require.Len(t, chains, 2)
	assert.Equal(t, Contracts{
		MultisigProver: "axelar1prover",
		VotingVerifier: "axelar1verifier-contract",
		Rewards:        "axelar1rewards",
	}, chains["ethereum"])
}

func TestParseChainContracts_GivenInvalidSpecs_ThenConfigurationError(t *testing.T) {
	invalid := [][]string{
		{"ethereum"},
		{"ethereum:axelar1prover"},
		{"ethereum::axelar1verifier-contract"},
		{"ethereum:axelar1prover:axelar1verifier-contract", "ethereum:a:b"},
	}
	for _, specs := range invalid {
		_, err := ParseChainContracts(specs, "axelar1rewards")
		assert.ErrorIs(t, err, domain.ErrConfiguration, "specs %v accepted", specs)
	}

	_, err := ParseChainContracts([]string{"ethereum:a:b"}, "")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func newTestReader(t *testing.T, endpoint string) *Reader {
	client, err := NewClient([]string{endpoint}, time.Second)
	require.NoError(t, err)
	reader, err := NewReader(client, testContracts)
	require.NoError(t, err)
	return reader
}
