package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/roommaster/internal/cart"
	"github.com/and161185/roommaster/internal/service"
)

// ------- output -------

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// money renders d with thousands separators: 1000000 -> "1,000,000".
func money(d decimal.Decimal) string {
	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func day(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(service.DateLayout)
}

func printCart(w io.Writer, items []cart.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOM\tTYPE\tCHECK-IN\tCHECK-OUT\tNIGHTS\tGUESTS\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			it.ID, it.Room.RoomNumber, it.Room.RoomType.Name,
			day(it.CheckInDate), day(it.CheckOutDate),
			it.NumberOfNights, it.NumberOfGuests, money(it.TotalPrice))
	}
	_ = tw.Flush()
}

// ------- parsers -------

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(service.DateLayout, s, time.UTC)
	if err != nil {
		return nil, usagef("bad date %q, want YYYY-MM-DD", s)
	}
	return &t, nil
}

func parseDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, usagef("bad amount %q", s)
	}
	return &d, nil
}

func parseOptInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, usagef("bad number %q", s)
	}
	return &n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
