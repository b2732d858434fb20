package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/model"
)

var (
	// ServiceFee is the flat fee shown on the cart screen.
	ServiceFee = decimal.NewFromInt(50000)

	taxRate     = decimal.RequireFromString("0.1")
	depositRate = decimal.RequireFromString("0.3")
)

// Checkout is the cart screen breakdown.
type Checkout struct {
	Subtotal   decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

// CheckoutSummary adds the service fee to a non-empty subtotal.
func CheckoutSummary(subtotal decimal.Decimal) Checkout {
	fee := decimal.Zero
	if subtotal.IsPositive() {
		fee = ServiceFee
	}
	return Checkout{Subtotal: subtotal, ServiceFee: fee, Total: subtotal.Add(fee)}
}

// Summary is the booking-summary and payment breakdown.
type Summary struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Deposit  decimal.Decimal
}

// BookingSummary applies 10% tax and computes the 30% deposit, both rounded
// to whole currency units.
func BookingSummary(subtotal decimal.Decimal) Summary {
	tax := subtotal.Mul(taxRate).Round(0)
	total := subtotal.Add(tax)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    total,
		Deposit:  total.Mul(depositRate).Round(0),
	}
}

// Validate checks that items can be booked.
func Validate(items []Item) error {
	if len(items) == 0 {
		return errs.ErrCartEmpty
	}
	for _, it := range items {
		if it.CheckInDate == nil || it.CheckOutDate == nil {
			return fmt.Errorf("%w: room %s", errs.ErrMissingDates, it.Room.RoomNumber)
		}
	}
	return nil
}

// BookingRequest builds one booking for every room in the cart. The stay
// dates come from the first item and guests are summed.
func BookingRequest(items []Item) (model.CreateBookingRequest, error) {
	if err := Validate(items); err != nil {
		return model.CreateBookingRequest{}, err
	}
	req := model.CreateBookingRequest{
		Rooms:        make([]model.BookingRoom, 0, len(items)),
		CheckInDate:  *items[0].CheckInDate,
		CheckOutDate: *items[0].CheckOutDate,
	}
	for _, it := range items {
		req.Rooms = append(req.Rooms, model.BookingRoom{RoomID: it.Room.ID})
		req.TotalGuests += it.NumberOfGuests
	}
	return req, nil
}
