package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/httpclient"
	"github.com/and161185/roommaster/internal/model"
)

// DateLayout is the calendar date format of query parameters.
const DateLayout = "2006-01-02"

// SearchParams filters the availability search. Stay dates are required.
type SearchParams struct {
	Page        int
	Limit       int
	CheckIn     time.Time
	CheckOut    time.Time
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinCapacity *int
	MaxCapacity *int
	Floor       *int
}

func (p SearchParams) validate() error {
	if p.CheckIn.IsZero() || p.CheckOut.IsZero() {
		return fmt.Errorf("%w: check-in and check-out dates are required", errs.ErrInvalidInput)
	}
	if !p.CheckOut.After(p.CheckIn) {
		return fmt.Errorf("%w: check-out must be after check-in", errs.ErrInvalidInput)
	}
	return nil
}

func (p SearchParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	q.Set("checkInDate", p.CheckIn.Format(DateLayout))
	q.Set("checkOutDate", p.CheckOut.Format(DateLayout))
	if p.MinPrice != nil {
		q.Set("minPrice", p.MinPrice.String())
	}
	if p.MaxPrice != nil {
		q.Set("maxPrice", p.MaxPrice.String())
	}
	setInt(q, "minCapacity", p.MinCapacity)
	setInt(q, "maxCapacity", p.MaxCapacity)
	setInt(q, "floor", p.Floor)
	return q
}

func setInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}

// RoomPage is one page of availability groups.
type RoomPage struct {
	Groups []model.RoomGroup `json:"data"`
	model.Page
}

// RoomService reads the room catalogue.
type RoomService struct {
	api httpclient.Doer
}

// NewRoomService constructs RoomService.
func NewRoomService(api httpclient.Doer) *RoomService {
	return &RoomService{api: api}
}

// Search lists room types with free rooms for the requested stay.
func (s *RoomService) Search(ctx context.Context, p SearchParams) (RoomPage, error) {
	if err := p.validate(); err != nil {
		return RoomPage{}, err
	}
	var out RoomPage
	err := call(ctx, s.api, &httpclient.Request{
		Method: http.MethodGet, Path: pathRoomsAvailable, Query: p.query(),
	}, &out)
	return out, err
}

// Get returns the current details of one room.
func (s *RoomService) Get(ctx context.Context, id string) (model.Room, error) {
	if id == "" {
		return model.Room{}, fmt.Errorf("%w: room id is required", errs.ErrInvalidInput)
	}
	var out model.Room
	err := call(ctx, s.api, &httpclient.Request{Method: http.MethodGet, Path: idPath(pathRooms, id)}, &out)
	return out, err
}

// PriceSort orders search groups by nightly price.
type PriceSort string

const (
	SortNone      PriceSort = ""
	SortPriceAsc  PriceSort = "price_asc"
	SortPriceDesc PriceSort = "price_desc"
)

// GroupFilter narrows search results on the client.
type GroupFilter struct {
	Query       string // case-insensitive substring of the room type name
	RoomTypeIDs []string
	Sort        PriceSort
}

// FilterGroups applies f to groups without modifying the input.
func FilterGroups(groups []model.RoomGroup, f GroupFilter) []model.RoomGroup {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	types := make(map[string]bool, len(f.RoomTypeIDs))
	for _, id := range f.RoomTypeIDs {
		types[id] = true
	}

	out := make([]model.RoomGroup, 0, len(groups))
	for _, g := range groups {
		if q != "" && !strings.Contains(strings.ToLower(g.RoomType.Name), q) {
			continue
		}
		if len(types) > 0 && !types[g.RoomType.ID] {
			continue
		}
		out = append(out, g)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RoomType.BasePrice.LessThan(out[j].RoomType.BasePrice)
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RoomType.BasePrice.GreaterThan(out[j].RoomType.BasePrice)
		})
	}
	return out
}
