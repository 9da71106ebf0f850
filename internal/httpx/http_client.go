package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

// NewClient returns an *http.Client bounded by timeout. Non-positive values
// fall back to the default so no outbound call can hang forever.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: EffectiveTimeout(timeout)}
}

func EffectiveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultExternalHTTPTimeout
	}
	return timeout
}
