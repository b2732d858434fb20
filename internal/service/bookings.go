package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/httpclient"
	"github.com/and161185/roommaster/internal/model"
)

// Tab is a booking list view.
type Tab string

const (
	TabAll       Tab = "all"
	TabUpcoming  Tab = "upcoming"
	TabCompleted Tab = "completed"
	TabCancelled Tab = "cancelled"
)

// StatusForTab maps a list view to the server status filter. The API takes a
// single status, so "upcoming" lists CONFIRMED bookings only; TabAll has no filter.
func StatusForTab(t Tab) (model.BookingStatus, error) {
	switch t {
	case TabAll, "":
		return "", nil
	case TabUpcoming:
		return model.BookingConfirmed, nil
	case TabCompleted:
		return model.BookingCheckedOut, nil
	case TabCancelled:
		return model.BookingCancelled, nil
	default:
		return "", fmt.Errorf("%w: unknown tab %q", errs.ErrInvalidInput, t)
	}
}

// ListParams filters the booking list.
type ListParams struct {
	Status model.BookingStatus
	Page   int
	Limit  int
}

// BookingPage is one page of the customer's bookings.
type BookingPage struct {
	Bookings []model.Booking `json:"data"`
	model.Page
}

// BookingService manages the customer's bookings.
type BookingService struct {
	api httpclient.Doer
}

// NewBookingService constructs BookingService.
func NewBookingService(api httpclient.Doer) *BookingService {
	return &BookingService{api: api}
}

// Create books every room of req for one stay.
func (s *BookingService) Create(ctx context.Context, req model.CreateBookingRequest) (model.CreatedBooking, error) {
	if len(req.Rooms) == 0 {
		return model.CreatedBooking{}, fmt.Errorf("%w: at least one room is required", errs.ErrInvalidInput)
	}
	var out model.CreatedBooking
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodPost, Path: pathBookings, Body: req}, &out)
	return out, err
}

// List returns the customer's bookings.
func (s *BookingService) List(ctx context.Context, p ListParams) (BookingPage, error) {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	var out BookingPage
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodGet, Path: pathBookings, Query: q}, &out)
	return out, err
}

// Get returns one booking.
func (s *BookingService) Get(ctx context.Context, id string) (model.Booking, error) {
	if id == "" {
		return model.Booking{}, fmt.Errorf("%w: booking id is required", errs.ErrInvalidInput)
	}
	var out model.Booking
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodGet, Path: idPath(pathBookings+"/", id)}, &out)
	return out, err
}

// Cancel cancels a booking.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: booking id is required", errs.ErrInvalidInput)
	}
	return call(ctx, s.api, &httpclient.Request{Method: http.MethodPost, Path: idPath(pathBookings+"/", id, "cancel")}, nil)
}
