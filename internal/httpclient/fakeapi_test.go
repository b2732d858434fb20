package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/roommaster/internal/model"
)

var testSignKey = []byte("test-key")

// fakeAPI mimics the auth behaviour of the backend: access tokens are valid
// until rotated, refresh mints a new pair.
type fakeAPI struct {
	srv *httptest.Server

	mu      sync.Mutex
	valid   map[string]bool
	refresh map[string]bool
	seq     int

	refreshCalls  atomic.Int32
	unauthorized  atomic.Int32
	refreshStatus atomic.Int32 // non-zero: refresh answers with this status
	holdRefresh   atomic.Int32 // refresh waits until this many 401s were served
	alwaysReject  atomic.Bool  // protected routes answer 401 regardless of token
	lastAuth      atomic.Value // last Authorization header seen on protected routes
	slow          atomic.Int64 // delay on /slow, nanoseconds
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{valid: map[string]bool{}, refresh: map[string]bool{}}
	f.lastAuth.Store("")

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Post(RefreshTokensPath, f.handleRefresh)
		r.Get("/customer/profile", f.protected(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "c1", "fullName": "Ann"}})
		}))
		r.Get("/customer/missing", f.protected(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"code": 404, "message": "Room not found"})
		}))
		r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusOK, map[string]any{
				"contentType": r.Header.Get("Content-Type"),
				"accept":      r.Header.Get("Accept"),
				"auth":        r.Header.Get("Authorization"),
				"query":       r.URL.RawQuery,
				"body":        body,
			})
		})
		r.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Duration(f.slow.Load()))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) baseURL() string { return f.srv.URL + "/v1" }

func (f *fakeAPI) mint(kind string, ttl time.Duration) model.Token {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	exp := time.Now().Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   "c1",
		ID:        fmt.Sprintf("%s-%d", kind, seq),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSignKey)
	if err != nil {
		panic(err)
	}
	return model.Token{Token: signed, Expires: exp}
}

// issue mints and registers a fresh pair.
func (f *fakeAPI) issue() model.Tokens {
	tk := model.Tokens{Access: f.mint("access", 15*time.Minute), Refresh: f.mint("refresh", 24*time.Hour)}
	f.mu.Lock()
	f.valid[tk.Access.Token] = true
	f.refresh[tk.Refresh.Token] = true
	f.mu.Unlock()
	return tk
}

// expireAll invalidates every access token issued so far.
func (f *fakeAPI) expireAll() {
	f.mu.Lock()
	f.valid = map[string]bool{}
	f.mu.Unlock()
}

func (f *fakeAPI) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		f.lastAuth.Store(auth)
		tok := strings.TrimPrefix(auth, "Bearer ")
		f.mu.Lock()
		ok := f.valid[tok]
		f.mu.Unlock()
		if f.alwaysReject.Load() || !ok {
			f.unauthorized.Add(1)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Please authenticate"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)

	deadline := time.Now().Add(2 * time.Second)
	for f.unauthorized.Load() < f.holdRefresh.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if st := int(f.refreshStatus.Load()); st != 0 {
		writeJSON(w, st, map[string]any{"code": st, "message": "refresh rejected"})
		return
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad body"})
		return
	}
	f.mu.Lock()
	ok := f.refresh[body.RefreshToken]
	delete(f.refresh, body.RefreshToken)
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Please authenticate"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"tokens": f.issue()}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// transportRefresher calls the refresh endpoint straight through a Transport.
type transportRefresher struct{ tr *Transport }

func (r transportRefresher) RefreshTokens(ctx context.Context, refreshToken string) (model.Tokens, error) {
	resp, err := r.tr.Do(ctx, &Request{
		Method:    http.MethodPost,
		Path:      RefreshTokensPath,
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	})
	if err != nil {
		return model.Tokens{}, err
	}
	var out struct {
		Tokens model.Tokens `json:"tokens"`
	}
	if err := resp.DecodeData(&out); err != nil {
		return model.Tokens{}, err
	}
	return out.Tokens, nil
}

func newTestTransport(t *testing.T, baseURL string, cfg Config) *Transport {
	t.Helper()
	cfg.BaseURL = baseURL
	tr, err := NewTransport(cfg)
	require.NoError(t, err)
	return tr
}
