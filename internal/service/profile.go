package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/httpclient"
	"github.com/and161185/roommaster/internal/model"
)

// ProfileUpdate carries the profile fields to change; nil fields are not sent.
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IDNumber *string `json:"idNumber,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// ProfileService reads and edits the signed-in customer.
type ProfileService struct {
	api httpclient.Doer
}

func NewProfileService(api httpclient.Doer) *ProfileService {
	return &ProfileService{api: api}
}

func (s *ProfileService) Get(ctx context.Context) (model.Customer, error) {
	var out model.Customer
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodGet, Path: pathProfile}, &out)
	return out, err
}

func (s *ProfileService) Update(ctx context.Context, u ProfileUpdate) (model.Customer, error) {
	var out model.Customer
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodPut, Path: pathProfile, Body: u}, &out)
	return out, err
}

func (s *ProfileService) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" || next == "" {
		return fmt.Errorf("%w: current and new password are required", errs.ErrInvalidInput)
	}
	return call(ctx, s.api, &httpclient.Request{
		Method: http.MethodPost,
		Path:   pathChangePassword,
		Body:   map[string]string{"currentPassword": current, "newPassword": next},
	}, nil)
}
