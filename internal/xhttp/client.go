package xhttp

import (
	"net/http"
	"time"
)

const defaultClientTimeout = 30 * time.Second

// NewClient returns an HTTP client with a request timeout. A nil transport
// uses http.DefaultTransport.
func NewClient(transport http.RoundTripper) *http.Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultClientTimeout,
	}
}
