package httputil

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return NewClientTimeout(DefaultTimeout)
}

// NewClientTimeout returns an HTTP client with a caller-chosen timeout, for
// slow endpoints like report generation.
func NewClientTimeout(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
