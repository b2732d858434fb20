package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/roommaster/internal/cart"
	"github.com/and161185/roommaster/internal/config"
	"github.com/and161185/roommaster/internal/httpclient"
	"github.com/and161185/roommaster/internal/service"
	"github.com/and161185/roommaster/internal/tokenstore"
)

// cartKey holds the JSON snapshot of the cart in the local store.
const cartKey = "cart"

// app is the wired client used by the commands.
type app struct {
	log   *zap.Logger
	db    *tokenstore.SQLite
	store tokenstore.Store

	session  *service.SessionService
	auth     *service.AuthService
	rooms    *service.RoomService
	bookings *service.BookingService
	profile  *service.ProfileService
	payment  *service.PaymentService
	checkout *service.CheckoutService
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := tokenstore.OpenSQLite(ctx, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	var store tokenstore.Store = db
	if cfg.StorePassphrase != "" {
		sealed, err := tokenstore.NewSealed(ctx, db, cfg.StorePassphrase)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("unlock store: %w", err)
		}
		store = sealed
	}

	tr, err := httpclient.NewTransport(cfg.HTTP(), httpclient.WithLogger(log))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// The refresher talks to the bare transport; everything else goes
	// through the authenticated client.
	client := httpclient.New(tr, store, service.NewAuthService(tr), log)
	auth := service.NewAuthService(client)
	rooms := service.NewRoomService(client)
	bookings := service.NewBookingService(client)

	return &app{
		log:      log,
		db:       db,
		store:    store,
		session:  service.NewSessionService(auth, store, log),
		auth:     auth,
		rooms:    rooms,
		bookings: bookings,
		profile:  service.NewProfileService(client),
		payment:  service.NewPaymentService(client),
		checkout: service.NewCheckoutService(rooms, bookings, log),
	}, nil
}

func (a *app) close() error { return a.db.Close() }

func (a *app) loadCart(ctx context.Context) (*cart.Cart, error) {
	c := cart.New()
	raw, ok, err := a.store.Get(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok || raw == "" {
		return c, nil
	}
	var items []cart.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		a.log.Warn("discarding unreadable cart", zap.Error(err))
		return c, nil
	}
	if err := c.Restore(items); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *app) saveCart(ctx context.Context, c *cart.Cart) error {
	if c.Count() == 0 {
		return a.store.Delete(ctx, cartKey)
	}
	b, err := json.Marshal(c.Items())
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return a.store.Set(ctx, cartKey, string(b))
}
