package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/model"
)

// Session is the materialized auth triple.
type Session struct {
	AccessToken  string
	RefreshToken string
	Customer     model.Customer
}

// SaveSession persists tokens and customer data. User data is written last;
// an interrupted save leaves a partial session, which LoadSession rejects.
func SaveSession(ctx context.Context, s Store, tokens model.Tokens, customer model.Customer) error {
	userData, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("marshal user data: %w", err)
	}
	if err := s.Set(ctx, AccessTokenKey, tokens.Access.Token); err != nil {
		return err
	}
	if err := s.Set(ctx, RefreshTokenKey, tokens.Refresh.Token); err != nil {
		return err
	}
	return s.Set(ctx, UserDataKey, string(userData))
}

// SaveTokens overwrites the token pair, leaving user data untouched.
func SaveTokens(ctx context.Context, s Store, tokens model.Tokens) error {
	if err := s.Set(ctx, AccessTokenKey, tokens.Access.Token); err != nil {
		return err
	}
	return s.Set(ctx, RefreshTokenKey, tokens.Refresh.Token)
}

// LoadSession returns the stored session. A partial or corrupt triple is
// erased and reported as errs.ErrUnauthenticated.
func LoadSession(ctx context.Context, s Store) (Session, error) {
	access, okA, err := s.Get(ctx, AccessTokenKey)
	if err != nil {
		return Session{}, err
	}
	refresh, okR, err := s.Get(ctx, RefreshTokenKey)
	if err != nil {
		return Session{}, err
	}
	userData, okU, err := s.Get(ctx, UserDataKey)
	if err != nil {
		return Session{}, err
	}

	okA, okR, okU = okA && access != "", okR && refresh != "", okU && userData != ""
	if !okA && !okR && !okU {
		return Session{}, errs.ErrUnauthenticated
	}
	if !okA || !okR || !okU {
		return Session{}, clearAndReject(ctx, s, errors.New("partial session"))
	}

	var c model.Customer
	if err := json.Unmarshal([]byte(userData), &c); err != nil {
		return Session{}, clearAndReject(ctx, s, fmt.Errorf("user data: %w", err))
	}
	return Session{AccessToken: access, RefreshToken: refresh, Customer: c}, nil
}

func clearAndReject(ctx context.Context, s Store, cause error) error {
	if err := ClearSession(ctx, s); err != nil {
		return errors.Join(fmt.Errorf("%w: %w", errs.ErrUnauthenticated, cause), err)
	}
	return fmt.Errorf("%w: %w", errs.ErrUnauthenticated, cause)
}

// ClearSession deletes all three session keys. Every delete is attempted even
// if an earlier one fails.
func ClearSession(ctx context.Context, s Store) error {
	return errors.Join(
		s.Delete(ctx, AccessTokenKey),
		s.Delete(ctx, RefreshTokenKey),
		s.Delete(ctx, UserDataKey),
	)
}
