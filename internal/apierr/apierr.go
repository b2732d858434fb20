// Package apierr turns any error raised by the client into a user-displayable result.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/and161185/roommaster/internal/errs"
	"github.com/and161185/roommaster/internal/httpclient"
)

// Kind is the error taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuth
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	DefaultMessage   = "An unexpected error occurred. Please try again."
	NoResponseMsg    = "Network error. Please check your internet connection and try again."
	NetworkMsg       = "Network error. Please check your internet connection."
	SessionExpired   = "Your session has expired. Please login again."
	ForbiddenMsg     = "You don't have permission to perform this action."
	InvalidInputMsg  = "Invalid input. Please check your data."
	NotFoundMsg      = "The requested resource was not found."
	ConflictMsg      = "This action conflicts with existing data."
	ServerFailureMsg = "Server error. Please try again later."
)

// FieldError is one field-scoped validation failure reported by the server.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the uniform classification of an error.
type Result struct {
	Kind    Kind
	Message string
	// StatusCode is 0 when no response was received.
	StatusCode     int
	IsNetworkError bool
	IsAuthError    bool
	FieldErrors    []FieldError
}

type errorBody struct {
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Errors  []FieldError `json:"errors"`
}

// Classify never fails: every input, nil included, yields a Result.
// An empty fallback selects DefaultMessage.
func Classify(err error, fallback string) Result {
	if fallback == "" {
		fallback = DefaultMessage
	}
	if err == nil {
		return Result{Kind: KindUnknown, Message: fallback}
	}

	var se *httpclient.StatusError
	hasStatus := errors.As(err, &se)

	if isSessionLoss(err) {
		r := Result{Kind: KindAuth, Message: SessionExpired, IsAuthError: true}
		if hasStatus && se.StatusCode == 401 {
			r.StatusCode = se.StatusCode
			if b := parseBody(se.Body); b.Message != "" {
				r.Message = b.Message
			}
		}
		return r
	}
	if hasStatus {
		return fromStatus(se, fallback)
	}

	var ne *httpclient.NetworkError
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return Result{Kind: KindNetwork, Message: NoResponseMsg, IsNetworkError: true}
	}
	var nerr net.Error
	if errors.As(err, &nerr) || mentionsNetwork(err.Error()) {
		return Result{Kind: KindNetwork, Message: NetworkMsg, IsNetworkError: true}
	}

	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return Result{Kind: KindUnknown, Message: msg}
}

func fromStatus(se *httpclient.StatusError, fallback string) Result {
	b := parseBody(se.Body)
	r := Result{StatusCode: se.StatusCode}
	switch code := se.StatusCode; {
	case code == 401:
		r.Kind, r.IsAuthError = KindAuth, true
		r.Message = or(b.Message, SessionExpired)
	case code == 403:
		r.Kind = KindForbidden
		r.Message = or(b.Message, ForbiddenMsg)
	case code == 400:
		r.Kind = KindValidation
		if b.Errors != nil {
			r.FieldErrors = b.Errors
			lines := make([]string, 0, len(b.Errors))
			for _, fe := range b.Errors {
				lines = append(lines, fe.Field+": "+fe.Message)
			}
			r.Message = strings.Join(lines, "\n")
		}
		r.Message = or(r.Message, b.Message, b.Error, InvalidInputMsg)
	case code == 404:
		r.Kind = KindNotFound
		r.Message = or(b.Message, NotFoundMsg)
	case code == 409:
		r.Kind = KindConflict
		r.Message = or(b.Message, ConflictMsg)
	case code >= 500:
		r.Kind = KindServer
		r.Message = ServerFailureMsg
	default:
		r.Kind = KindUnknown
		r.Message = or(b.Message, b.Error, fallback)
	}
	return r
}

// Message is shorthand for Classify(err, fallback).Message.
func Message(err error, fallback string) string {
	return Classify(err, fallback).Message
}

// IsNetwork reports whether err means the server was never reached.
func IsNetwork(err error) bool {
	return Classify(err, "").IsNetworkError
}

// IsAuth reports whether err requires the user to sign in again.
func IsAuth(err error) bool {
	return Classify(err, "").IsAuthError
}

func isSessionLoss(err error) bool {
	return errors.Is(err, errs.ErrSessionExpired) ||
		errors.Is(err, errs.ErrNoRefreshToken) ||
		errors.Is(err, errs.ErrUnauthenticated)
}

func parseBody(raw []byte) errorBody {
	var b errorBody
	if len(raw) == 0 {
		return b
	}
	_ = json.Unmarshal(raw, &b) // non-JSON bodies fall back to generic messages
	return b
}

func mentionsNetwork(msg string) bool {
	for _, s := range []string{"Network", "network", "ECONNREFUSED", "connection refused", "Failed to fetch", "no such host"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func or(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
