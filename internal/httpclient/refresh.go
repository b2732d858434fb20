package httpclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/tokenstore"
)

// flight is a pending refresh; every subscriber receives the same outcome.
type flight struct {
	done  chan struct{}
	token string
	err   error
}

// coordinator guarantees at most one refresh call in flight per Client.
type coordinator struct {
	store     tokenstore.Store
	refresher TokenRefresher
	log       *zap.Logger

	mu     sync.Mutex
	flight *flight
}

func newCoordinator(store tokenstore.Store, refresher TokenRefresher, log *zap.Logger) *coordinator {
	return &coordinator{store: store, refresher: refresher, log: log}
}

// fresh returns an access token newer than stale. It joins the refresh in
// flight, reuses a token minted after stale was sent, or starts a refresh.
// cause is the 401 that triggered the call.
func (c *coordinator) fresh(ctx context.Context, stale string, cause error) (string, error) {
	c.mu.Lock()
	f := c.flight
	if f == nil {
		// The flight is cleared only after its tokens are persisted, so a
		// token differing from stale here was minted by a completed refresh.
		cur, ok, err := c.store.Get(ctx, tokenstore.AccessTokenKey)
		if err == nil && ok && cur != "" && cur != stale {
			c.mu.Unlock()
			return cur, nil
		}
		f = &flight{done: make(chan struct{})}
		c.flight = f
		go c.run(context.WithoutCancel(ctx), f, cause)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.token, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *coordinator) run(ctx context.Context, f *flight, cause error) {
	token, err := c.exchange(ctx, cause)

	c.mu.Lock()
	f.token, f.err = token, err
	c.flight = nil
	c.mu.Unlock()
	close(f.done)
}

// exchange performs the single network refresh. Any failure of the refresh
// call erases the local session.
func (c *coordinator) exchange(ctx context.Context, cause error) (string, error) {
	rt, ok, err := c.store.Get(ctx, tokenstore.RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("%w: read refresh token: %w", errs.ErrSessionExpired, err)
	}
	if !ok || rt == "" {
		c.clear(ctx, "no refresh token")
		return "", fmt.Errorf("%w: %w", errs.ErrNoRefreshToken, cause)
	}

	tokens, err := c.refresher.RefreshTokens(ctx, rt)
	if err == nil && tokens.Access.Token == "" {
		err = errors.New("refresh response without access token")
	}
	if err != nil {
		c.clear(ctx, "refresh failed")
		c.log.Warn("token refresh failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", errs.ErrSessionExpired, err)
	}

	if err := tokenstore.SaveTokens(ctx, c.store, tokens); err != nil {
		c.clear(ctx, "persist refreshed tokens")
		return "", fmt.Errorf("%w: persist tokens: %w", errs.ErrSessionExpired, err)
	}
	c.log.Info("token refreshed", zap.Time("access_expires", tokens.Access.Expires))
	return tokens.Access.Token, nil
}

func (c *coordinator) clear(ctx context.Context, reason string) {
	c.log.Warn("clearing session", zap.String("reason", reason))
	if err := tokenstore.ClearSession(ctx, c.store); err != nil {
		c.log.Error("clear session", zap.Error(err))
	}
}
