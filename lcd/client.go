package lcd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/pkg/errors"
)

const defaultRequestTimeout = 10 * time.Second

// Client queries a Cosmos LCD (REST) endpoint set with best-effort failover:
// endpoints are tried in order starting from the last one that worked. The
// preferred endpoint is explicit client state, not a package-level variable.
type Client struct {
	endpoints  []string
	httpClient *http.Client

	mu        sync.Mutex
	preferred int
}

func NewClient(endpoints []string, requestTimeout time.Duration) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, errors.Wrap(domain.ErrConfiguration, "at least one lcd endpoint is required")
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	trimmed := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		trimmed = append(trimmed, strings.TrimRight(endpoint, "/"))
	}
	return &Client{
		endpoints:  trimmed,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// SmartQuery executes a CosmWasm smart query against the given contract and
// decodes the contract response into out. Missing state is reported as
// domain.ErrNotFound.
func (c *Client) SmartQuery(ctx context.Context, contract string, query any, out any) error {
	payload, err := json.Marshal(query)
	if err != nil {
		return errors.Wrap(err, "encoding query payload")
	}
	encoded := base64.StdEncoding.EncodeToString(payload)
	path := fmt.Sprintf("/cosmwasm/wasm/v1/contract/%s/smart/%s", contract, url.PathEscape(encoded))

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, path, &envelope); err != nil {
		return err
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(err, "decoding contract response")
	}
	return nil
}

// LatestBlockHeight returns the height of the newest block known to the node.
func (c *Client) LatestBlockHeight(ctx context.Context) (uint64, error) {
	var response struct {
		Block struct {
			Header struct {
				Height string `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}
	err := c.get(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest", &response)
	if err != nil {
		return 0, errors.Wrap(err, "querying latest block")
	}
	height, err := strconv.ParseUint(response.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing block height [%s]", response.Block.Header.Height)
	}
	return height, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	start := c.preferredEndpoint()
	var lastErr error
	for i := 0; i < len(c.endpoints); i++ {
		index := (start + i) % len(c.endpoints)
		err := c.getFrom(ctx, c.endpoints[index], path, out)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			// "not found" is an authoritative answer, do not fail over
			c.setPreferredEndpoint(index)
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		log.Printf("[WARN] lcd: endpoint [%s] failed: %v", c.endpoints[index], err)
		lastErr = err
	}
	return errors.Wrap(lastErr, "all lcd endpoints failed")
}

func (c *Client) getFrom(ctx context.Context, endpoint, path string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+path, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return errors.Wrap(err, "executing request")
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		// contract queries for missing ids surface as a 500 with a
		// "not found" message rather than a 404
		if strings.Contains(strings.ToLower(string(body)), "not found") {
			return domain.ErrNotFound
		}
		return errors.Errorf("unexpected status [%d]: %s", response.StatusCode, string(body))
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}

func (c *Client) preferredEndpoint() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferred
}

func (c *Client) setPreferredEndpoint(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferred = index
}
