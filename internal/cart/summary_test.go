package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/and161185/roommaster/internal/errs"
)

func TestCheckoutSummary(t *testing.T) {
	t.Parallel()

	s := CheckoutSummary(decimal.NewFromInt(3_000_000))
	require.True(t, s.ServiceFee.Equal(decimal.NewFromInt(50_000)))
	require.True(t, s.Total.Equal(decimal.NewFromInt(3_050_000)))

	empty := CheckoutSummary(decimal.Zero)
	require.True(t, empty.ServiceFee.IsZero())
	require.True(t, empty.Total.IsZero())
}

func TestBookingSummary(t *testing.T) {
	t.Parallel()

	s := BookingSummary(decimal.NewFromInt(3_000_000))
	require.Equal(t, "300000", s.Tax.String())
	require.Equal(t, "3300000", s.Total.String())
	require.Equal(t, "990000", s.Deposit.String())

	// rounding to whole units
	s = BookingSummary(decimal.NewFromInt(1005))
	require.Equal(t, "101", s.Tax.String())
	require.Equal(t, "1106", s.Total.String())
	require.Equal(t, "332", s.Deposit.String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errs.ErrCartEmpty)

	c := New()
	_, _ = c.Add(room("1", 10), date("2024-01-10"), date("2024-01-11"), 1)
	require.NoError(t, Validate(c.Items()))

	_, _ = c.Add(room("2", 10), nil, date("2024-01-11"), 1)
	err := Validate(c.Items())
	if !errors.Is(err, errs.ErrMissingDates) {
		t.Fatalf("want ErrMissingDates, got %v", err)
	}
}

func TestBookingRequest(t *testing.T) {
	t.Parallel()
	c := New()
	_, _ = c.Add(room("1", 10), date("2024-01-10"), date("2024-01-12"), 2)
	_, _ = c.Add(room("2", 10), date("2024-02-01"), date("2024-02-03"), 3)

	req, err := BookingRequest(c.Items())
	require.NoError(t, err)
	require.Len(t, req.Rooms, 2)
	require.Equal(t, "1", req.Rooms[0].RoomID)
	require.Equal(t, "2", req.Rooms[1].RoomID)
	require.Equal(t, 5, req.TotalGuests)
	require.Equal(t, "2024-01-10", req.CheckInDate.Format("2006-01-02"))
	require.Equal(t, "2024-01-12", req.CheckOutDate.Format("2006-01-02"))

	_, err = BookingRequest(nil)
	require.ErrorIs(t, err, errs.ErrCartEmpty)
}
