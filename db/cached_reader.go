package db

import (
	"context"
	"log"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
)

const (
	kindSession = "session"
	kindPoll    = "poll"
)

// Upstream is the uncached view of the ledger, usually the LCD reader.
type Upstream interface {
	LatestBlockHeight(ctx context.Context) (uint64, error)
	SigningSession(ctx context.Context, chain string, id uint64) (*domain.SigningSession, error)
	Poll(ctx context.Context, chain string, id uint64) (*domain.Poll, error)
	RewardsParams(ctx context.Context, chain string) (*domain.RewardsParams, error)
}

// CachedReader serves record lookups from the pebble store and falls through
// to the upstream on a miss. Only final records are cached: a pending session
// or an open poll can still change. Cache write failures are logged, never
// fatal.
type CachedReader struct {
	upstream Upstream
	store    *PebbleStore
}

func NewCachedReader(upstream Upstream, store *PebbleStore) *CachedReader {
	return &CachedReader{upstream: upstream, store: store}
}

func (c *CachedReader) LatestBlockHeight(ctx context.Context) (uint64, error) {
	return c.upstream.LatestBlockHeight(ctx)
}

func (c *CachedReader) RewardsParams(ctx context.Context, chain string) (*domain.RewardsParams, error) {
	return c.upstream.RewardsParams(ctx, chain)
}

func (c *CachedReader) SigningSession(ctx context.Context, chain string, id uint64) (*domain.SigningSession, error) {
	var cached domain.SigningSession
	if err := c.store.GetRecord(chain, kindSession, id, &cached); err == nil {
		return &cached, nil
	}
	session, err := c.upstream.SigningSession(ctx, chain, id)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		if err := c.store.SetRecord(chain, kindSession, id, session); err != nil {
			log.Printf("[WARN] db: caching session [%d] failed: %v", id, err)
		}
	}
	return session, nil
}

func (c *CachedReader) Poll(ctx context.Context, chain string, id uint64) (*domain.Poll, error) {
	var cached domain.Poll
	if err := c.store.GetRecord(chain, kindPoll, id, &cached); err == nil {
		return &cached, nil
	}
	poll, err := c.upstream.Poll(ctx, chain, id)
	if err != nil {
		return nil, err
	}
	if poll.Finished {
		if err := c.store.SetRecord(chain, kindPoll, id, poll); err != nil {
			log.Printf("[WARN] db: caching poll [%d] failed: %v", id, err)
		}
	}
	return poll, nil
}
