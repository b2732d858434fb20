// Package cart keeps the local list of rooms the customer intends to book.
package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/and161185/roommaster/internal/model"
)

const day = 24 * time.Hour

// Item is one room booked for a date range. NumberOfNights and TotalPrice
// are derived from the dates and the room price and are never set directly.
type Item struct {
	ID             uuid.UUID       `json:"id"`
	Room           model.Room      `json:"room"`
	CheckInDate    *time.Time      `json:"checkInDate"`
	CheckOutDate   *time.Time      `json:"checkOutDate"`
	NumberOfNights int             `json:"numberOfNights"`
	NumberOfGuests int             `json:"numberOfGuests"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	AddedAt        time.Time       `json:"addedAt"`
}

// Patch carries the fields of an Update; nil fields keep their current value.
type Patch struct {
	CheckInDate    *time.Time
	CheckOutDate   *time.Time
	NumberOfGuests *int
}

// Cart is an ordered collection of items; insertion order is display order.
// It is safe for concurrent use.
type Cart struct {
	mu    sync.RWMutex
	items []Item
	now   func() time.Time
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{now: time.Now}
}

// Nights is the number of started days between the two dates, 0 if either is unset.
func Nights(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	d := checkOut.Sub(*checkIn)
	if d < 0 {
		d = -d
	}
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return n
}

// LinePrice is nights times the nightly base price of the room type.
func LinePrice(room model.Room, nights int) decimal.Decimal {
	return room.RoomType.BasePrice.Mul(decimal.NewFromInt(int64(nights)))
}

// Add appends a new line item. The same room may be added more than once.
// Guests are stored as given; see ClampGuests.
func (c *Cart) Add(room model.Room, checkIn, checkOut *time.Time, guests int) (Item, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return Item{}, fmt.Errorf("cart item id: %w", err)
	}
	it := Item{
		ID:             id,
		Room:           room,
		CheckInDate:    copyTime(checkIn),
		CheckOutDate:   copyTime(checkOut),
		NumberOfGuests: guests,
		AddedAt:        c.now(),
	}
	derive(&it)

	c.mu.Lock()
	c.items = append(c.items, it)
	c.mu.Unlock()
	return it, nil
}

// Remove deletes the item with id; unknown ids are ignored.
func (c *Cart) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Update merges p into the item and recomputes its derived fields.
// It reports false when no item has the given id.
func (c *Cart) Update(id uuid.UUID, p Patch) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		it := &c.items[i]
		if it.ID != id {
			continue
		}
		if p.CheckInDate != nil {
			it.CheckInDate = copyTime(p.CheckInDate)
		}
		if p.CheckOutDate != nil {
			it.CheckOutDate = copyTime(p.CheckOutDate)
		}
		if p.NumberOfGuests != nil {
			it.NumberOfGuests = *p.NumberOfGuests
		}
		derive(it)
		return *it, true
	}
	return Item{}, false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Count is the number of line items, not room-nights.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Total is the cart subtotal.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// Contains reports whether any item is for roomID.
func (c *Cart) Contains(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Room.ID == roomID {
			return true
		}
	}
	return false
}

// Items returns a copy of the items in display order.
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the item with id.
func (c *Cart) Get(id uuid.UUID) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Restore replaces the contents with a persisted snapshot. Derived fields
// are recomputed; items without an id get a fresh one.
func (c *Cart) Restore(items []Item) error {
	restored := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID == uuid.Nil {
			id, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("cart item id: %w", err)
			}
			it.ID = id
		}
		derive(&it)
		restored = append(restored, it)
	}

	c.mu.Lock()
	c.items = restored
	c.mu.Unlock()
	return nil
}

// ClampGuests bounds n to [1, room capacity]. A room without a known
// capacity only gets the lower bound.
func ClampGuests(room model.Room, n int) int {
	if n < 1 {
		n = 1
	}
	if cp := room.RoomType.Capacity; cp > 0 && n > cp {
		n = cp
	}
	return n
}

func derive(it *Item) {
	it.NumberOfNights = Nights(it.CheckInDate, it.CheckOutDate)
	it.TotalPrice = LinePrice(it.Room, it.NumberOfNights)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
