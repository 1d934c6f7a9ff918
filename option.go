package logsnag

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/joshuawatkins04/logsnag_sdk/internal/telemetry"
)

const (
	defaultBaseURL = "https://api.logsnag.com"
	defaultTimeout = 10 * time.Second

	logPath     = "/v1/log"
	insightPath = "/v1/insight"
)

// HTTPDoer is an interface for HTTP operations (for testing).
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the Client.
type Option func(*clientConfig) error

// clientConfig holds internal configuration.
type clientConfig struct {
	baseURL    string
	httpClient HTTPDoer
	userAgent  string
	timeout    time.Duration
	telemetry  telemetry.Config
}

// newDefaultConfig returns the default client configuration.
func newDefaultConfig() *clientConfig {
	return &clientConfig{
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}
}

// WithBaseURL sets a custom API base URL. The endpoint paths are fixed.
// Default: "https://api.logsnag.com"
func WithBaseURL(url string) Option {
	return func(c *clientConfig) error {
		if url == "" {
			return errors.New("base URL cannot be empty")
		}
		c.baseURL = strings.TrimSuffix(url, "/")
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client.
// A *http.Client is copied and its transport instrumented when tracing or
// metrics are enabled; any other HTTPDoer is used as is.
// Default: an SDK-owned *http.Client with the configured timeout
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *clientConfig) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithTimeout sets the request timeout of the SDK-owned HTTP client.
// Default: 10 seconds
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithUserAgent sets a custom User-Agent suffix.
// The SDK will prepend its own identifier.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) error {
		c.userAgent = ua
		return nil
	}
}

// WithTracerProvider records a client span per request with tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) error {
		if tp == nil {
			return errors.New("tracer provider cannot be nil")
		}
		c.telemetry.TracerProvider = tp
		return nil
	}
}

// WithPropagators injects trace context into outbound requests with p.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(c *clientConfig) error {
		if p == nil {
			return errors.New("propagators cannot be nil")
		}
		c.telemetry.Propagators = p
		return nil
	}
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		c.telemetry.Registerer = reg
		return nil
	}
}
