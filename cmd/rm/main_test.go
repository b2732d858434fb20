package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// backend is a minimal in-memory Roommaster API.
type backend struct {
	srv *httptest.Server

	mu       sync.Mutex
	access   string
	created  []map[string]any
	loggedIn bool
	price    string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{access: "at-1", price: "1000000"}

	r := chi.NewRouter()
	r.Route("/v1/customer", func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["password"] != "secret" {
				reply(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Incorrect phone or password"})
				return
			}
			b.mu.Lock()
			b.loggedIn = true
			b.mu.Unlock()
			reply(w, http.StatusOK, map[string]any{"data": map[string]any{
				"customer": map[string]any{"id": "c1", "fullName": "Ann Lee", "phone": in["phone"]},
				"tokens": map[string]any{
					"access":  map[string]any{"token": "at-1"},
					"refresh": map[string]any{"token": "rt-1"},
				},
			}})
		})
		r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.loggedIn = false
			b.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		})
		r.Group(func(r chi.Router) {
			r.Use(b.auth)
			r.Get("/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
				b.mu.Lock()
				price := b.price
				b.mu.Unlock()
				reply(w, http.StatusOK, map[string]any{"data": map[string]any{
					"id": chi.URLParam(r, "id"), "roomNumber": "101", "floor": 1, "status": "AVAILABLE",
					"roomType": map[string]any{"id": "rt-std", "name": "Standard", "capacity": 2, "basePrice": price},
				}})
			})
			r.Post("/bookings", func(w http.ResponseWriter, r *http.Request) {
				var in map[string]any
				_ = json.NewDecoder(r.Body).Decode(&in)
				b.mu.Lock()
				b.created = append(b.created, in)
				b.mu.Unlock()
				reply(w, http.StatusCreated, map[string]any{"data": map[string]any{
					"bookingId": "b1", "bookingCode": "BK-0001", "totalAmount": "3300000",
				}})
			})
		})
	})
	b.srv = httptest.NewServer(r)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		ok := b.loggedIn && r.Header.Get("Authorization") == "Bearer "+b.access
		b.mu.Unlock()
		if !ok {
			reply(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Please authenticate"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// cli runs commands against one isolated store.
type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T, baseURL string) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("ROOMMASTER_STORE_PASSPHRASE", "")
	return &cli{t: t, base: []string{
		"-env", filepath.Join(dir, "missing.env"),
		"-store", filepath.Join(dir, "store.db"),
		"-base-url", baseURL,
	}}
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append(append([]string{}, c.base...), args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), []string{"version"}, &out, &bytes.Buffer{})
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "rm dev")
}

func TestRun_UnknownCommand(t *testing.T) {
	be := newBackend(t)
	c := newCLI(t, be.srv.URL+"/v1")

	code, _, stderr := c.run("frobnicate")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestRun_MissingFlagsIsUsageError(t *testing.T) {
	be := newBackend(t)
	c := newCLI(t, be.srv.URL+"/v1")

	code, _, stderr := c.run("login", "-phone", "0900")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "need -phone and -password")
}

func TestRun_LoginWhoamiLogout(t *testing.T) {
	be := newBackend(t)
	c := newCLI(t, be.srv.URL+"/v1")

	code, _, stderr := c.run("whoami")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "hint: run `rm login`")

	code, out, _ := c.run("login", "-phone", "0900", "-password", "secret")
	require.Equal(t, 0, code)
	require.Contains(t, out, "welcome, Ann Lee")

	code, out, _ = c.run("whoami")
	require.Equal(t, 0, code)
	var who map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &who))
	require.Equal(t, "c1", who["customer"].(map[string]any)["id"])

	code, _, _ = c.run("logout")
	require.Equal(t, 0, code)
	code, _, _ = c.run("whoami")
	require.Equal(t, 1, code)
}

func TestRun_BadLoginShowsServerMessage(t *testing.T) {
	be := newBackend(t)
	c := newCLI(t, be.srv.URL+"/v1")

	code, _, stderr := c.run("login", "-phone", "0900", "-password", "wrong")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "error: Incorrect phone or password")
}

func TestRun_CartAndCheckout(t *testing.T) {
	be := newBackend(t)
	c := newCLI(t, be.srv.URL+"/v1")

	code, _, _ := c.run("login", "-phone", "0900", "-password", "secret")
	require.Equal(t, 0, code)

	code, out, _ := c.run("cart", "add", "-room", "r1", "-in", "2026-11-01", "-out", "2026-11-04", "-guests", "5")
	require.Equal(t, 0, code)
	require.Contains(t, out, "guests adjusted to 2")
	require.Contains(t, out, "3 night(s), 3,000,000")

	code, out, _ = c.run("cart", "ls")
	require.Equal(t, 0, code)
	require.Contains(t, out, "101")
	require.Contains(t, out, "2026-11-01")

	code, out, _ = c.run("cart", "summary")
	require.Equal(t, 0, code)
	require.Contains(t, out, "service fee  50,000")
	require.Contains(t, out, "total        3,050,000")
	require.Contains(t, out, "deposit (30%)   990,000")

	code, out, _ = c.run("checkout")
	require.Equal(t, 0, code, out)
	require.Contains(t, out, "booking BK-0001 (b1) created")
	require.Contains(t, out, "total 3,300,000, deposit due 990,000")

	be.mu.Lock()
	require.Len(t, be.created, 1)
	rooms := be.created[0]["rooms"].([]any)
	require.Equal(t, "r1", rooms[0].(map[string]any)["roomId"])
	require.EqualValues(t, 2, be.created[0]["totalGuests"])
	be.mu.Unlock()

	code, out, _ = c.run("cart", "ls")
	require.Equal(t, 0, code)
	require.Contains(t, out, "cart is empty")
}

func TestRun_CheckoutEmptyCart(t *testing.T) {
	be := newBackend(t)
	c := newCLI(t, be.srv.URL+"/v1")

	code, _, stderr := c.run("checkout")
	require.Equal(t, 1, code)
	require.True(t, strings.HasPrefix(stderr, "error: "), stderr)
}

func TestRun_NetworkError(t *testing.T) {
	be := newBackend(t)
	url := be.srv.URL + "/v1"
	be.srv.Close()
	c := newCLI(t, url)

	code, _, stderr := c.run("login", "-phone", "0900", "-password", "secret")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "error: Network error. Please check your internet connection and try again.")
}
