package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrConnectivity       = errors.New("backend unreachable")
	ErrAuth               = errors.New("credentials rejected")
	ErrNotFound           = errors.New("not found")
	ErrStore              = errors.New("ticket store error")
	ErrParse              = errors.New("could not parse model output")
	ErrValidation         = errors.New("invalid labels received")
	ErrBackendUnavailable = errors.New("text generation backend unavailable")
)

// StoreError describes a failed ticket-store call. Kind is one of
// ErrConnectivity, ErrAuth, ErrNotFound or ErrStore.
type StoreError struct {
	Op         string
	StatusCode int
	Body       string
	Kind       error
	Err        error
}

func (e *StoreError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %v: status %d: %s", e.Op, e.Kind, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *StoreError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// StatusError classifies a non-2xx ticket-store response.
func StatusError(op string, status int, body []byte) *StoreError {
	kind := ErrStore
	switch {
	case status == 401 || status == 403:
		kind = ErrAuth
	case status == 404:
		kind = ErrNotFound
	}
	return &StoreError{Op: op, StatusCode: status, Body: truncateBody(string(body)), Kind: kind}
}

// TransportError wraps a network-level failure as a connectivity error.
func TransportError(op string, err error) *StoreError {
	return &StoreError{Op: op, Kind: ErrConnectivity, Err: err}
}

func truncateBody(s string) string {
	const max = 512
	if len(s) > max {
		return ClipUTF8(s, max) + fmt.Sprintf("... [truncated, total_length=%d]", len(s))
	}
	return s
}

// ClipUTF8 returns at most max bytes of s without splitting a rune.
func ClipUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
