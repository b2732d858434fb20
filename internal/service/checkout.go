package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/roommaster/internal/cart"
	"github.com/and161185/roommaster/internal/model"
)

const checkoutFetchLimit = 4

// CheckoutResult is the outcome of booking a cart.
type CheckoutResult struct {
	Booking model.CreatedBooking
	Summary cart.Summary
	// Repriced is true when a room's price changed since it was added.
	Repriced bool
	Items    []cart.Item
}

// CheckoutService books the contents of a cart.
type CheckoutService struct {
	rooms    *RoomService
	bookings *BookingService
	log      *zap.Logger
}

func NewCheckoutService(rooms *RoomService, bookings *BookingService, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{rooms: rooms, bookings: bookings, log: log}
}

// Checkout refreshes every room from the server, reprices the items and
// creates one booking for all of them. The cart itself is not modified.
func (s *CheckoutService) Checkout(ctx context.Context, items []cart.Item) (CheckoutResult, error) {
	if err := cart.Validate(items); err != nil {
		return CheckoutResult{}, err
	}

	current, err := s.fetchRooms(ctx, items)
	if err != nil {
		return CheckoutResult{}, err
	}

	repriced := false
	fresh := make([]cart.Item, len(items))
	for i, it := range items {
		r := current[it.Room.ID]
		if !r.RoomType.BasePrice.Equal(it.Room.RoomType.BasePrice) {
			repriced = true
			s.log.Warn("room price changed",
				zap.String("room_id", r.ID),
				zap.String("was", it.Room.RoomType.BasePrice.String()),
				zap.String("now", r.RoomType.BasePrice.String()))
		}
		it.Room = r
		fresh[i] = it
	}
	c := cart.New()
	if err := c.Restore(fresh); err != nil {
		return CheckoutResult{}, err
	}
	fresh = c.Items()

	req, err := cart.BookingRequest(fresh)
	if err != nil {
		return CheckoutResult{}, err
	}
	created, err := s.bookings.Create(ctx, req)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("create booking: %w", err)
	}
	s.log.Info("booking created", zap.String("booking_id", created.BookingID), zap.Int("rooms", len(req.Rooms)))

	return CheckoutResult{
		Booking:  created,
		Summary:  cart.BookingSummary(c.Total()),
		Repriced: repriced,
		Items:    fresh,
	}, nil
}

func (s *CheckoutService) fetchRooms(ctx context.Context, items []cart.Item) (map[string]model.Room, error) {
	ids := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, it := range items {
		if !seen[it.Room.ID] {
			seen[it.Room.ID] = true
			ids = append(ids, it.Room.ID)
		}
	}

	rooms := make([]model.Room, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkoutFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			r, err := s.rooms.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("room %s: %w", id, err)
			}
			rooms[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]model.Room, len(ids))
	for i, id := range ids {
		out[id] = rooms[i]
	}
	return out, nil
}
