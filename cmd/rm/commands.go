package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/roommaster/internal/cart"
	"github.com/and161185/roommaster/internal/model"
	"github.com/and161185/roommaster/internal/service"
)

type handler func(ctx context.Context, args []string, out io.Writer) error

func (a *app) commands() map[string]handler {
	return map[string]handler{
		"register":        a.cmdRegister,
		"login":           a.cmdLogin,
		"logout":          a.cmdLogout,
		"whoami":          a.cmdWhoami,
		"profile":         a.cmdProfile,
		"passwd":          a.cmdPasswd,
		"forgot-password": a.cmdForgotPassword,
		"reset-password":  a.cmdResetPassword,
		"rooms":           a.cmdRooms,
		"room":            a.cmdRoom,
		"cart":            a.cmdCart,
		"checkout":        a.cmdCheckout,
		"bookings":        a.cmdBookings,
		"booking":         a.cmdBooking,
		"cancel":          a.cmdCancel,
		"qr":              a.cmdQR,
	}
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	return nil
}

// ------- auth -------

func (a *app) cmdRegister(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("register")
	var in service.RegisterInput
	fs.StringVar(&in.FullName, "name", "", "full name")
	fs.StringVar(&in.Phone, "phone", "", "phone")
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Password, "password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if in.FullName == "" || in.Phone == "" || in.Email == "" || in.Password == "" {
		return usagef("need -name -phone -email -password")
	}
	c, err := a.session.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "registered %s (%s)\n", c.FullName, c.ID)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("login")
	phone := fs.String("phone", "", "phone")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *phone == "" || *password == "" {
		return usagef("need -phone and -password")
	}
	c, err := a.session.Login(ctx, *phone, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "welcome, %s\n", c.FullName)
	return nil
}

func (a *app) cmdLogout(ctx context.Context, _ []string, out io.Writer) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("whoami")
	remote := fs.Bool("remote", false, "fetch the profile from the server")
	if err := parse(fs, args); err != nil {
		return err
	}
	info, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	c := info.Customer
	if *remote {
		if c, err = a.profile.Get(ctx); err != nil {
			return err
		}
	}
	printJSON(out, map[string]any{
		"customer":      c,
		"accessExpires": info.AccessExpires,
		"expiresSoon":   info.ExpiresSoon,
	})
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("profile")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	idNumber := fs.String("id-number", "", "ID document number")
	address := fs.String("address", "", "address")
	if err := parse(fs, args); err != nil {
		return err
	}
	upd := service.ProfileUpdate{
		FullName: optString(*name),
		Email:    optString(*email),
		Phone:    optString(*phone),
		IDNumber: optString(*idNumber),
		Address:  optString(*address),
	}

	var (
		c   model.Customer
		err error
	)
	if upd == (service.ProfileUpdate{}) {
		c, err = a.profile.Get(ctx)
	} else {
		c, err = a.profile.Update(ctx, upd)
	}
	if err != nil {
		return err
	}
	printJSON(out, c)
	return nil
}

func (a *app) cmdPasswd(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("passwd")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *current == "" || *next == "" {
		return usagef("need -current and -new")
	}
	if err := a.profile.ChangePassword(ctx, *current, *next); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("forgot-password")
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return usagef("need -email")
	}
	if err := a.auth.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintln(out, "check your inbox for a reset link")
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("reset-password")
	token := fs.String("token", "", "reset token")
	password := fs.String("password", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *token == "" || *password == "" {
		return usagef("need -token and -password")
	}
	if err := a.auth.ResetPassword(ctx, *token, *password); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// ------- rooms -------

func (a *app) cmdRooms(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("rooms")
	in := fs.String("in", "", "check-in date")
	outDate := fs.String("out", "", "check-out date")
	query := fs.String("q", "", "room type name filter")
	types := fs.String("types", "", "comma separated room type ids")
	sortBy := fs.String("sort", "", "price_asc|price_desc")
	minPrice := fs.String("min-price", "", "minimum nightly price")
	maxPrice := fs.String("max-price", "", "maximum nightly price")
	minCap := fs.String("min-cap", "", "minimum capacity")
	maxCap := fs.String("max-cap", "", "maximum capacity")
	floor := fs.String("floor", "", "floor")
	page := fs.Int("page", 1, "page")
	limit := fs.Int("limit", 20, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}

	p := service.SearchParams{Page: *page, Limit: *limit}
	checkIn, err := parseDate(*in)
	if err != nil {
		return err
	}
	checkOut, err := parseDate(*outDate)
	if err != nil {
		return err
	}
	if checkIn == nil || checkOut == nil {
		return usagef("need -in and -out")
	}
	p.CheckIn, p.CheckOut = *checkIn, *checkOut
	if p.MinPrice, err = parseDecimal(*minPrice); err != nil {
		return err
	}
	if p.MaxPrice, err = parseDecimal(*maxPrice); err != nil {
		return err
	}
	if p.MinCapacity, err = parseOptInt(*minCap); err != nil {
		return err
	}
	if p.MaxCapacity, err = parseOptInt(*maxCap); err != nil {
		return err
	}
	if p.Floor, err = parseOptInt(*floor); err != nil {
		return err
	}
	sort := service.PriceSort(*sortBy)
	if sort != service.SortNone && sort != service.SortPriceAsc && sort != service.SortPriceDesc {
		return usagef("bad -sort %q", *sortBy)
	}

	res, err := a.rooms.Search(ctx, p)
	if err != nil {
		return err
	}
	groups := service.FilterGroups(res.Groups, service.GroupFilter{
		Query: *query, RoomTypeIDs: splitList(*types), Sort: sort,
	})
	for _, g := range groups {
		fmt.Fprintf(out, "%s (%s) - %s/night, up to %d guests, %d available\n",
			g.RoomType.Name, g.RoomType.ID, money(g.RoomType.BasePrice), g.RoomType.Capacity, g.AvailableCount)
		for _, r := range g.Rooms {
			fmt.Fprintf(out, "  %s  room %s, floor %d\n", r.ID, r.RoomNumber, r.Floor)
		}
	}
	if len(groups) == 0 {
		fmt.Fprintln(out, "no rooms available")
	}
	return nil
}

func (a *app) cmdRoom(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("room")
	id := fs.String("id", "", "room id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("need -id")
	}
	r, err := a.rooms.Get(ctx, *id)
	if err != nil {
		return err
	}
	printJSON(out, r)
	return nil
}

// ------- cart -------

func (a *app) cmdCart(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usagef("cart: need add|ls|update|rm|clear|summary")
	}
	c, err := a.loadCart(ctx)
	if err != nil {
		return err
	}

	sub, args := args[0], args[1:]
	switch sub {
	case "ls":
		printCart(out, c.Items())
		return nil
	case "summary":
		printSummary(out, c)
		return nil
	case "add":
		err = a.cartAdd(ctx, c, args, out)
	case "update":
		err = cartUpdate(c, args, out)
	case "rm":
		err = cartRemove(c, args)
	case "clear":
		c.Clear()
	default:
		return usagef("cart: unknown subcommand %q", sub)
	}
	if err != nil {
		return err
	}
	return a.saveCart(ctx, c)
}

func (a *app) cartAdd(ctx context.Context, c *cart.Cart, args []string, out io.Writer) error {
	fs := newFlags("cart add")
	roomID := fs.String("room", "", "room id")
	in := fs.String("in", "", "check-in date")
	outDate := fs.String("out", "", "check-out date")
	guests := fs.Int("guests", 1, "number of guests")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *roomID == "" {
		return usagef("need -room")
	}
	checkIn, err := parseDate(*in)
	if err != nil {
		return err
	}
	checkOut, err := parseDate(*outDate)
	if err != nil {
		return err
	}

	room, err := a.rooms.Get(ctx, *roomID)
	if err != nil {
		return err
	}
	n := cart.ClampGuests(room, *guests)
	if n != *guests {
		fmt.Fprintf(out, "guests adjusted to %d (room capacity %d)\n", n, room.RoomType.Capacity)
	}
	it, err := c.Add(room, checkIn, checkOut, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s: room %s, %d night(s), %s\n", it.ID, room.RoomNumber, it.NumberOfNights, money(it.TotalPrice))
	return nil
}

func cartUpdate(c *cart.Cart, args []string, out io.Writer) error {
	fs := newFlags("cart update")
	idStr := fs.String("id", "", "cart item id")
	in := fs.String("in", "", "check-in date")
	outDate := fs.String("out", "", "check-out date")
	guests := fs.String("guests", "", "number of guests")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := uuid.FromString(*idStr)
	if err != nil {
		return usagef("need a valid -id")
	}

	var p cart.Patch
	if p.CheckInDate, err = parseDate(*in); err != nil {
		return err
	}
	if p.CheckOutDate, err = parseDate(*outDate); err != nil {
		return err
	}
	if p.NumberOfGuests, err = parseOptInt(*guests); err != nil {
		return err
	}
	if cur, ok := c.Get(id); ok && p.NumberOfGuests != nil {
		n := cart.ClampGuests(cur.Room, *p.NumberOfGuests)
		p.NumberOfGuests = &n
	}

	it, ok := c.Update(id, p)
	if !ok {
		return fmt.Errorf("cart item %s not found", id)
	}
	fmt.Fprintf(out, "updated %s: %d night(s), %d guest(s), %s\n", it.ID, it.NumberOfNights, it.NumberOfGuests, money(it.TotalPrice))
	return nil
}

func cartRemove(c *cart.Cart, args []string) error {
	fs := newFlags("cart rm")
	idStr := fs.String("id", "", "cart item id")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := uuid.FromString(*idStr)
	if err != nil {
		return usagef("need a valid -id")
	}
	c.Remove(id)
	return nil
}

func printSummary(out io.Writer, c *cart.Cart) {
	printCart(out, c.Items())
	sub := c.Total()
	co := cart.CheckoutSummary(sub)
	bs := cart.BookingSummary(sub)
	fmt.Fprintf(out, "\nsubtotal     %s\nservice fee  %s\ntotal        %s\n",
		money(co.Subtotal), money(co.ServiceFee), money(co.Total))
	fmt.Fprintf(out, "\nwith tax (10%%)  %s\ndeposit (30%%)   %s\n", money(bs.Total), money(bs.Deposit))
}

// ------- bookings -------

func (a *app) cmdCheckout(ctx context.Context, _ []string, out io.Writer) error {
	c, err := a.loadCart(ctx)
	if err != nil {
		return err
	}
	res, err := a.checkout.Checkout(ctx, c.Items())
	if err != nil {
		return err
	}
	if res.Repriced {
		fmt.Fprintln(out, "note: prices changed since the rooms were added")
	}
	c.Clear()
	if err := a.saveCart(ctx, c); err != nil {
		return err
	}
	fmt.Fprintf(out, "booking %s (%s) created\ntotal %s, deposit due %s\n",
		res.Booking.BookingCode, res.Booking.BookingID, money(res.Summary.Total), money(res.Summary.Deposit))
	if !res.Booking.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "pay before %s (see `rm qr`)\n", res.Booking.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) cmdBookings(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("bookings")
	tab := fs.String("tab", string(service.TabAll), "all|upcoming|completed|cancelled")
	page := fs.Int("page", 1, "page")
	limit := fs.Int("limit", 50, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	status, err := service.StatusForTab(service.Tab(*tab))
	if err != nil {
		return usagef("bad -tab %q", *tab)
	}
	res, err := a.bookings.List(ctx, service.ListParams{Status: status, Page: *page, Limit: *limit})
	if err != nil {
		return err
	}
	if len(res.Bookings) == 0 {
		fmt.Fprintln(out, "no bookings")
		return nil
	}
	for _, b := range res.Bookings {
		fmt.Fprintf(out, "%s  %-11s  %s -> %s  %d guest(s)  %s\n",
			b.BookingCode, b.Status, b.CheckInDate.Format(service.DateLayout),
			b.CheckOutDate.Format(service.DateLayout), b.TotalGuests, money(b.TotalAmount))
	}
	return nil
}

func (a *app) cmdBooking(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("booking")
	id := fs.String("id", "", "booking id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("need -id")
	}
	b, err := a.bookings.Get(ctx, *id)
	if err != nil {
		return err
	}
	printJSON(out, b)
	return nil
}

func (a *app) cmdCancel(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("cancel")
	id := fs.String("id", "", "booking id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("need -id")
	}
	if err := a.bookings.Cancel(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(out, "cancelled")
	return nil
}

func (a *app) cmdQR(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlags("qr")
	file := fs.String("o", "", "write the image to this file")
	if err := parse(fs, args); err != nil {
		return err
	}
	qr, err := a.payment.QRCode(ctx)
	if err != nil {
		return err
	}
	img, mediaType, err := qr.Image()
	if err != nil {
		return err
	}
	if *file == "" {
		fmt.Fprintf(out, "%s, %d bytes (use -o to save)\n", mediaType, len(img))
		return nil
	}
	if err := os.WriteFile(*file, img, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", *file)
	return nil
}
