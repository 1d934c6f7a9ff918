// Package transport provides HTTP transport utilities for the SDK.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Request represents an HTTP request to be made.
type Request struct {
	Method string
	Path   string
	// Body is the already-encoded JSON payload.
	Body []byte
}

// Response represents an HTTP response with its body fully read.
type Response struct {
	// HTTP is the underlying response. Its Body replays the buffered bytes.
	HTTP       *http.Response
	StatusCode int
	Body       []byte
	// ReadErr is set when the body could not be read completely.
	ReadErr   error
	RequestID string
}

// Transport handles HTTP communication with the API.
type Transport struct {
	BaseURL    string
	HTTPClient HTTPDoer
	APIToken   string
	UserAgent  string
}

// HTTPDoer is an interface for HTTP operations.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Do executes an HTTP request and returns the response.
// A returned error means the request was not sent or no response arrived.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	fullURL := t.BaseURL + req.Path

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+t.APIToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if t.UserAgent != "" {
		httpReq.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		readErr = fmt.Errorf("failed to read response body: %w", readErr)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &Response{
		HTTP:       resp,
		StatusCode: resp.StatusCode,
		Body:       body,
		ReadErr:    readErr,
		RequestID:  resp.Header.Get("X-Request-ID"),
	}, nil
}

// NewHTTPClient returns an *http.Client with the given timeout. wrap, when
// not nil, decorates the underlying RoundTripper.
func NewHTTPClient(timeout time.Duration, wrap func(http.RoundTripper) http.RoundTripper) *http.Client {
	var rt http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if wrap != nil {
		rt = wrap(rt)
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}
