// Package model defines the API entities exchanged with the Roommaster backend.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is an opaque bearer credential with its server-reported expiry.
type Token struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Tokens collects the issued access/refresh pair.
type Tokens struct {
	Access  Token `json:"access"`
	Refresh Token `json:"refresh"`
}

// Customer is the authenticated account as returned by the auth endpoints.
type Customer struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IDNumber  *string   `json:"idNumber"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoomStatus is the operational state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
	RoomReserved    RoomStatus = "RESERVED"
)

// RoomType is a category of rooms sharing capacity and nightly price.
type RoomType struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Capacity  int             `json:"capacity"`
	TotalBed  int             `json:"totalBed"`
	BasePrice decimal.Decimal `json:"basePrice"` // wire format is a decimal string
}

// Room is a single bookable unit.
type Room struct {
	ID         string     `json:"id"`
	RoomNumber string     `json:"roomNumber"`
	Floor      int        `json:"floor"`
	Code       string     `json:"code"`
	Status     RoomStatus `json:"status"`
	RoomTypeID string     `json:"roomTypeId"`
	RoomType   RoomType   `json:"roomType"`
}

// RoomGroup is one entry of the availability search: a room type and its free rooms.
type RoomGroup struct {
	RoomType       RoomType `json:"roomType"`
	AvailableCount int      `json:"availableCount"`
	Rooms          []Room   `json:"rooms"`
}

// BookingStatus is the server-side lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// Booking is a customer reservation covering one or more rooms.
type Booking struct {
	ID           string          `json:"id"`
	BookingCode  string          `json:"bookingCode"`
	Status       BookingStatus   `json:"status"`
	CheckInDate  time.Time       `json:"checkInDate"`
	CheckOutDate time.Time       `json:"checkOutDate"`
	TotalGuests  int             `json:"totalGuests"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// BookingRoom references a room in a create-booking request.
type BookingRoom struct {
	RoomID string `json:"roomId"`
}

// CreateBookingRequest is the payload of POST /customer/bookings.
type CreateBookingRequest struct {
	Rooms        []BookingRoom `json:"rooms"`
	CheckInDate  time.Time     `json:"checkInDate"`
	CheckOutDate time.Time     `json:"checkOutDate"`
	TotalGuests  int           `json:"totalGuests"`
}

// CreatedBooking is the server acknowledgement of a new booking.
type CreatedBooking struct {
	BookingID   string          `json:"bookingId"`
	BookingCode string          `json:"bookingCode"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Page describes the paging envelope of list endpoints.
type Page struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
