package httpclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingRoundTripper_Passthrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ok := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody}, nil
	})
	rt := LoggingRoundTripper(zap.New(core), ok)

	req := httptest.NewRequest(http.MethodGet, "http://api.test/v1/customer/profile", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status mismatch: %d", resp.StatusCode)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/v1/customer/profile" || fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	for k, v := range fields {
		if s, _ := v.(string); s == "Bearer secret" {
			t.Fatalf("credential logged under %q", k)
		}
	}

	wantErr := errors.New("boom")
	bad := roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, wantErr })
	_, err = LoggingRoundTripper(zaptest.NewLogger(t), bad).RoundTrip(req)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want original error, got: %v", err)
	}
}

func TestRecoverRoundTripper_CatchesPanic(t *testing.T) {
	t.Parallel()

	panics := roundTripFunc(func(*http.Request) (*http.Response, error) { panic("oh no") })
	rt := RecoverRoundTripper(zaptest.NewLogger(t), panics)

	req := httptest.NewRequest(http.MethodGet, "http://api.test/x", nil)
	resp, err := rt.RoundTrip(req)
	if err == nil {
		t.Fatalf("expected error from panic")
	}
	if resp != nil {
		t.Fatalf("expected nil response")
	}
}

func TestRecoverRoundTripper_NoPanicPassThrough(t *testing.T) {
	t.Parallel()

	ok := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	resp, err := RecoverRoundTripper(zaptest.NewLogger(t), ok).RoundTrip(httptest.NewRequest(http.MethodGet, "http://api.test/x", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("want passthrough, got %v %v", resp, err)
	}
}
