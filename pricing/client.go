package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
)

const quoteKey = "quote"

// Client fetches the token's USD quote and caches it for a short TTL so the
// dashboard does not hammer the public quote API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokenID    string

	cache *ttlcache.Cache[string, float64]
	lock  sync.Mutex
}

func NewClient(baseURL, tokenID string, ttl time.Duration) *Client {
	cache := ttlcache.New[string, float64](
		ttlcache.WithTTL[string, float64](ttl),
		ttlcache.WithDisableTouchOnHit[string, float64](),
	)
	go cache.Start()
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenID:    tokenID,
		cache:      cache,
	}
}

func (c *Client) TokenPrice(ctx context.Context) (float64, error) {
	c.lock.Lock() // lock so that we do not get multiple threads inside the `if`
	defer c.lock.Unlock()

	item := c.cache.Get(quoteKey)
	if item != nil {
		return item.Value(), nil
	}
	price, err := c.fetchPrice(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "fetching price quote")
	}
	c.cache.Set(quoteKey, price, ttlcache.DefaultTTL)
	return price, nil
}

func (c *Client) fetchPrice(ctx context.Context) (float64, error) {
	requestURL := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.baseURL, c.tokenID)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, errors.Wrap(err, "creating request")
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, errors.Wrap(err, "executing request")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return 0, errors.Errorf("unexpected status [%d]: %s", response.StatusCode, string(body))
	}

	var quotes map[string]map[string]float64
	if err := json.NewDecoder(response.Body).Decode(&quotes); err != nil {
		return 0, errors.Wrap(err, "decoding response")
	}
	price, ok := quotes[c.tokenID]["usd"]
	if !ok {
		return 0, errors.Errorf("no usd quote for token [%s]", c.tokenID)
	}
	return price, nil
}

func (c *Client) Close() {
	c.cache.Stop()
}
