package httputil

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout = 15 * time.Second

	// UserAgent identifies outbound feed requests.
	UserAgent = "Crowdcast/1.0"
)

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
