package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/metrics"
)

const (
	defaultKeyPrefix     = "inova:session:"
	defaultTTL           = 6 * time.Minute
	defaultWatchInterval = 500 * time.Millisecond
)

// GateOptions configures a Gate.
type GateOptions struct {
	KeyPrefix string
	// TTL must outlive a full generation.
	TTL           time.Duration
	WatchInterval time.Duration
	Logger        *infra.Logger
}

// Gate is a session gate shared by every instance pointing at the same Redis.
// Each Acquire writes a fresh token under the session key; a holder whose
// token gets overwritten is cancelled with domain.ErrSuperseded.
type Gate struct {
	cli      *redis.Client
	prefix   string
	ttl      time.Duration
	interval time.Duration
	logger   *infra.Logger
}

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

func NewGate(cli *redis.Client, opts GateOptions) *Gate {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	interval := opts.WatchInterval
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &Gate{
		cli:      cli,
		prefix:   prefix,
		ttl:      ttl,
		interval: interval,
		logger:   infra.LoggerOrDiscard(opts.Logger),
	}
}

func (g *Gate) key(sessionID string) string {
	return g.prefix + sessionID
}

var luaRelease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (g *Gate) Acquire(ctx context.Context, sessionID string) (context.Context, func(), error) {
	if sessionID == "" {
		return ctx, func() {}, nil
	}
	key := g.key(sessionID)
	token := uuid.NewString()
	if err := g.cli.Set(ctx, key, token, g.ttl).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis: claim session: %w", err)
	}

	gctx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	go g.watch(gctx, key, token, cancel, done)

	release := func() {
		close(done)
		cancel(nil)
		// the caller's ctx may already be gone
		rctx, rcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer rcancel()
		if err := luaRelease.Run(rctx, g.cli, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			g.logger.Warn().Err(err).Str("session", sessionID).Msg("redis: release session gate failed")
		}
	}
	return gctx, release, nil
}

// watch cancels the holder once another instance has replaced its token.
func (g *Gate) watch(ctx context.Context, key, token string, cancel context.CancelCauseFunc, done <-chan struct{}) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		current, err := g.cli.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// expired; nobody else claimed it
			continue
		case err != nil:
			if ctx.Err() == nil {
				g.logger.Debug().Err(err).Str("key", key).Msg("redis: session gate check failed")
			}
			continue
		}
		if current != token {
			metrics.IncSuperseded()
			cancel(domain.ErrSuperseded)
			return
		}
	}
}
