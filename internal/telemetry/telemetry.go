// Package telemetry decorates the SDK's HTTP round trips with OpenTelemetry
// spans and Prometheus metrics.
package telemetry

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/joshuawatkins04/logsnag_sdk"

// Config selects the instrumentation applied to outbound requests.
// Nil fields disable the matching layer.
type Config struct {
	TracerProvider trace.TracerProvider
	Propagators    propagation.TextMapPropagator
	Registerer     prometheus.Registerer
}

// Enabled reports whether any instrumentation is configured.
func (c Config) Enabled() bool {
	return c.TracerProvider != nil || c.Propagators != nil || c.Registerer != nil
}

// Wrapper returns a function decorating a RoundTripper according to cfg.
// Metrics are recorded inside the client span.
func Wrapper(cfg Config) (func(http.RoundTripper) http.RoundTripper, error) {
	var metrics *Metrics
	if cfg.Registerer != nil {
		m, err := NewMetrics(cfg.Registerer)
		if err != nil {
			return nil, err
		}
		metrics = m
	}
	tracing := cfg.TracerProvider != nil || cfg.Propagators != nil

	return func(next http.RoundTripper) http.RoundTripper {
		if next == nil {
			next = http.DefaultTransport
		}
		if metrics != nil {
			next = metrics.Wrap(next)
		}
		if tracing {
			next = otelhttp.NewTransport(next, otelOptions(cfg)...)
		}
		return next
	}, nil
}

// otelOptions maps cfg onto otelhttp options.
func otelOptions(cfg Config) []otelhttp.Option {
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "logsnag POST " + r.URL.Path
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.Propagators != nil {
		opts = append(opts, otelhttp.WithPropagators(cfg.Propagators))
	}
	return opts
}

// Metrics holds the client-side request collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the request collectors on reg. Collectors already
// registered by another client on the same registry are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logsnag",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Requests sent to the LogSnag API by status code and method.",
	}, []string{"code", "method"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "logsnag",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests sent to the LogSnag API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Metrics{requests: requests, duration: duration}, nil
}

// register registers c, returning the existing collector on a duplicate.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// Wrap instruments next with the request counter and latency histogram.
func (m *Metrics) Wrap(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(m.requests,
		promhttp.InstrumentRoundTripperDuration(m.duration, next))
}

// Requests exposes the request counter, mainly for tests.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}
