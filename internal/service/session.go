package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/and161185/roommaster/internal/model"
	"github.com/and161185/roommaster/internal/tokenstore"
)

// RefreshThreshold is how close to expiry an access token is considered stale.
const RefreshThreshold = 5 * time.Minute

// SessionInfo describes the locally stored session.
type SessionInfo struct {
	Customer      model.Customer
	AccessExpires time.Time // zero when the token carries no readable expiry
	ExpiresSoon   bool
}

// SessionService ties AuthService to the token store.
type SessionService struct {
	auth  *AuthService
	store tokenstore.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(auth *AuthService, store tokenstore.Store, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{auth: auth, store: store, log: log, now: time.Now}
}

// Login authenticates and persists the session.
func (s *SessionService) Login(ctx context.Context, phone, password string) (model.Customer, error) {
	res, err := s.auth.Login(ctx, phone, password)
	if err != nil {
		return model.Customer{}, err
	}
	if err := tokenstore.SaveSession(ctx, s.store, res.Tokens, res.Customer); err != nil {
		return model.Customer{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("logged in", zap.String("customer_id", res.Customer.ID))
	return res.Customer, nil
}

// Register creates the account and persists the session.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (model.Customer, error) {
	res, err := s.auth.Register(ctx, in)
	if err != nil {
		return model.Customer{}, err
	}
	if err := tokenstore.SaveSession(ctx, s.store, res.Tokens, res.Customer); err != nil {
		return model.Customer{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("registered", zap.String("customer_id", res.Customer.ID))
	return res.Customer, nil
}

// Logout revokes the refresh token on the server when possible and always
// erases the local session. Server failures are logged, not returned; the
// returned error only reports a failure to clear local storage. Cancelling
// ctx aborts the server call but not the local clear.
func (s *SessionService) Logout(ctx context.Context) error {
	rt, ok, err := s.store.Get(ctx, tokenstore.RefreshTokenKey)
	switch {
	case err != nil:
		s.log.Warn("read refresh token", zap.Error(err))
	case ok && rt != "":
		if err := s.auth.Logout(ctx, rt); err != nil {
			s.log.Warn("server logout failed", zap.Error(err))
		}
	}

	// The local session goes even when the caller gave up waiting on the server.
	if err := tokenstore.ClearSession(context.WithoutCancel(ctx), s.store); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("logged out")
	return nil
}

// Current returns the stored session. Partial sessions are cleared and
// reported as errs.ErrUnauthenticated.
func (s *SessionService) Current(ctx context.Context) (SessionInfo, error) {
	sess, err := tokenstore.LoadSession(ctx, s.store)
	if err != nil {
		return SessionInfo{}, err
	}
	info := SessionInfo{Customer: sess.Customer}
	if exp, ok := tokenExpiry(sess.AccessToken); ok {
		info.AccessExpires = exp
		info.ExpiresSoon = exp.Sub(s.now()) < RefreshThreshold
	}
	return info, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client has no key and only uses it as a hint.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
