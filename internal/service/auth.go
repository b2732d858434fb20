// Package service contains the client-side application services of the Roommaster API.
package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/httpclient"
	"github.com/and161185/roommaster/internal/model"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Customer model.Customer `json:"customer"`
	Tokens   model.Tokens   `json:"tokens"`
}

// AuthService is a thin typed wrapper over the auth endpoints. It never
// touches the token store; errors are returned as the transport produced them.
type AuthService struct {
	api httpclient.Doer
}

var _ httpclient.TokenRefresher = (*AuthService)(nil)

// NewAuthService constructs AuthService over api. When used as the refresher
// of an httpclient.Client, api must be the bare Transport.
func NewAuthService(api httpclient.Doer) *AuthService {
	return &AuthService{api: api}
}

// Register creates a customer account and returns the first token pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if in.Phone == "" || in.Password == "" || in.Email == "" || in.FullName == "" {
		return AuthResult{}, fmt.Errorf("%w: full name, phone, email and password are required", errs.ErrInvalidInput)
	}
	var out AuthResult
	err := call(ctx, s.api, &httpclient.Request{
		Method: http.MethodPost, Path: pathRegister, Body: in, Anonymous: true,
	}, &out)
	return out, err
}

// Login authenticates by phone and password.
func (s *AuthService) Login(ctx context.Context, phone, password string) (AuthResult, error) {
	if phone == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: phone and password are required", errs.ErrInvalidInput)
	}
	var out AuthResult
	err := call(ctx, s.api, &httpclient.Request{
		Method:    http.MethodPost,
		Path:      pathLogin,
		Body:      map[string]string{"phone": phone, "password": password},
		Anonymous: true,
	}, &out)
	return out, err
}

// Logout revokes refreshToken on the server.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return call(ctx, s.api, &httpclient.Request{
		Method: http.MethodPost,
		Path:   pathLogout,
		Body:   map[string]string{"refreshToken": refreshToken},
	}, nil)
}

// RefreshTokens exchanges refreshToken for a new pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (model.Tokens, error) {
	var out struct {
		Tokens model.Tokens `json:"tokens"`
	}
	err := call(ctx, s.api, &httpclient.Request{
		Method:    http.MethodPost,
		Path:      pathRefreshTokens,
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	}, &out)
	return out.Tokens, err
}

// ForgotPassword asks the server to e-mail a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return call(ctx, s.api, &httpclient.Request{
		Method:    http.MethodPost,
		Path:      pathForgotPassword,
		Body:      map[string]string{"email": email},
		Anonymous: true,
	}, nil)
}

// ResetPassword sets a new password using the token from the reset e-mail.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	return call(ctx, s.api, &httpclient.Request{
		Method:    http.MethodPost,
		Path:      pathResetPassword,
		Body:      map[string]string{"token": token, "password": password},
		Anonymous: true,
	}, nil)
}
