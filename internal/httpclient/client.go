package httpclient

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/roommaster/internal/model"
	"github.com/and161185/roommaster/internal/tokenstore"
)

// RefreshTokensPath is the endpoint that exchanges a refresh token for a new pair.
const RefreshTokensPath = "/customer/auth/refresh-tokens"

// TokenRefresher mints a new token pair. Implementations must not route
// through Client, or a failing refresh would re-enter the pipeline.
type TokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (model.Tokens, error)
}

// Client attaches the stored access token to requests and transparently
// recovers from a single expired-token 401 per request.
type Client struct {
	tr      *Transport
	store   tokenstore.Store
	refresh *coordinator
	log     *zap.Logger
}

var _ Doer = (*Client)(nil)

// New wires the pipeline. Each Client owns its own refresh coordination state.
func New(tr *Transport, store tokenstore.Store, refresher TokenRefresher, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		tr:      tr,
		store:   store,
		refresh: newCoordinator(store, refresher, log),
		log:     log,
	}
}

// Do sends req through the auth pipeline.
//
// A 401 moves the request to Unauthorized. From there it either fails for good
// (refresh call itself, or already retried) or obtains a fresh token from the
// coordinator and is resubmitted exactly once.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Anonymous {
		return c.tr.Do(ctx, req)
	}

	bearer := c.authorize(ctx)
	retried := false
	for {
		res := c.tr.exchange(ctx, req, bearer)
		switch res.kind {
		case outcomeSuccess:
			return res.resp, nil
		case outcomeFailed:
			return nil, res.err
		}

		if isRefreshCall(req) {
			c.expire(ctx, "refresh call unauthorized", req)
			return nil, res.err
		}
		if retried {
			c.expire(ctx, "unauthorized after retry", req)
			return nil, res.err
		}
		retried = true

		token, err := c.refresh.fresh(ctx, bearer, res.err)
		if err != nil {
			return nil, err
		}
		bearer = token
	}
}

// authorize is the request phase: a storage failure never blocks the request.
func (c *Client) authorize(ctx context.Context) string {
	tok, ok, err := c.store.Get(ctx, tokenstore.AccessTokenKey)
	if err != nil {
		c.log.Warn("read access token", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return tok
}

func (c *Client) expire(ctx context.Context, reason string, req *Request) {
	c.log.Warn("session expired", zap.String("reason", reason),
		zap.String("method", req.Method), zap.String("path", req.Path))
	if err := tokenstore.ClearSession(context.WithoutCancel(ctx), c.store); err != nil {
		c.log.Error("clear session", zap.Error(err))
	}
}

func isRefreshCall(req *Request) bool {
	return strings.HasSuffix(strings.TrimRight(req.Path, "/"), RefreshTokensPath)
}
