package httpclient

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// LoggingRoundTripper logs request metadata around next.
func LoggingRoundTripper(log *zap.Logger, next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		// no bodies, no headers: they carry credentials
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("dur", time.Since(start)),
		}
		if err != nil {
			log.Debug("http", append(fields, zap.Error(err))...)
			return resp, err
		}
		log.Debug("http", append(fields, zap.Int("status", resp.StatusCode))...)
		return resp, nil
	})
}

// RecoverRoundTripper turns a panic in next into an error.
func RecoverRoundTripper(log *zap.Logger, next http.RoundTripper) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (resp *http.Response, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic",
					zap.Any("reason", rec),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", r.URL.Path),
				)
				resp, err = nil, fmt.Errorf("round trip: panic: %v", rec)
			}
		}()
		return next.RoundTrip(r)
	})
}
