package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TokenPrice_GivenQuote_ThenCached(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "axelar", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"axelar": {"usd": 0.42}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "axelar", time.Minute)
	defer client.Close()

	price, err := client.TokenPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.42, price)

	price, err = client.TokenPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.42, price)
	assert.Equal(t, 1, calls, "second lookup must hit the cache")
}

func TestClient_TokenPrice_GivenErrorStatus_ThenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "axelar", time.Minute)
	defer client.Close()

	_, err := client.TokenPrice(context.Background())
	assert.Error(t, err)
}

func TestClient_TokenPrice_GivenMissingToken_ThenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "axelar", time.Minute)
	defer client.Close()

	_, err := client.TokenPrice(context.Background())
	assert.Error(t, err)
}
