// Command logsnag publishes event logs and insights from the shell.
//
//	logsnag [-config file] log -channel c -event e [-description d] [-icon i] [-notify] [-tag k=v ...]
//	logsnag [-config file] insight -title t -value v [-type string|int|bool] [-icon i]
//
// Credentials come from the config file or LOGSNAG_API_KEY and LOGSNAG_PROJECT.
// A parent span in TRACEPARENT is propagated to the API unless
// telemetry.propagation is "none". With -metrics (or telemetry.log_metrics)
// the request metrics are logged once the command finishes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	logsnag "github.com/joshuawatkins04/logsnag_sdk"
	"github.com/joshuawatkins04/logsnag_sdk/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		os.Exit(1)
	}
}

// tagFlags collects repeated -tag key=value flags.
type tagFlags []string

func (t *tagFlags) String() string { return strings.Join(*t, ",") }

func (t *tagFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("tag %q must be key=value", v)
	}
	*t = append(*t, v)
	return nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	global := flag.NewFlagSet("logsnag", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to a YAML config file")
	logMetrics := global.Bool("metrics", false, "log request metrics after publishing")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "logsnag: %v\n", err)
		return err
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		err := errors.New("expected a subcommand: log or insight")
		logger.Error("usage", "err", err)
		return err
	}

	opts := []logsnag.Option{
		logsnag.WithBaseURL(cfg.BaseURL),
		logsnag.WithTimeout(cfg.Timeout),
		logsnag.WithUserAgent("logsnag-cli"),
	}

	var reg *prometheus.Registry
	if *logMetrics || cfg.Telemetry.LogMetrics {
		reg = prometheus.NewRegistry()
		opts = append(opts, logsnag.WithMetrics(reg))
	}

	if strings.EqualFold(cfg.Telemetry.Propagation, config.PropagationTraceContext) && cfg.Telemetry.TraceParent != "" {
		prop := propagation.TraceContext{}
		ctx = prop.Extract(ctx, propagation.MapCarrier{
			"traceparent": cfg.Telemetry.TraceParent,
			"tracestate":  cfg.Telemetry.TraceState,
		})
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			opts = append(opts, logsnag.WithPropagators(prop))
			logger.Debug("propagating parent trace", "trace_id", sc.TraceID().String())
		} else {
			logger.Warn("ignoring malformed trace parent", "env", config.EnvTraceParent)
		}
	}

	client, err := logsnag.NewClient(cfg.APIToken, cfg.Project, opts...)
	if err != nil {
		logger.Error("create client", "err", err)
		return err
	}
	if reg != nil {
		defer logRequestMetrics(logger, reg)
	}

	switch rest[0] {
	case "log":
		err = runLog(ctx, client, rest[1:], stderr)
	case "insight":
		err = runInsight(ctx, client, rest[1:], stderr)
	default:
		err = fmt.Errorf("unknown subcommand %q", rest[0])
	}
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		logger.Error("publish failed", "subcommand", rest[0], "err", err)
		return err
	}
	logger.Info("published", "subcommand", rest[0], "project", client.Project())
	return nil
}

func runLog(ctx context.Context, client *logsnag.Client, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(stderr)
	channel := fs.String("channel", "", "channel name (required)")
	event := fs.String("event", "", "event name (required)")
	description := fs.String("description", "", "event description")
	icon := fs.String("icon", "", "event icon")
	notify := fs.Bool("notify", false, "send a push notification")
	var tags tagFlags
	fs.Var(&tags, "tag", "tag as key=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *channel == "" || *event == "" {
		return errors.New("-channel and -event are required")
	}

	b := client.Event(*channel, *event).
		WithDescription(*description).
		WithIcon(*icon)
	if isFlagSet(fs, "notify") {
		b.WithNotify(*notify)
	}
	for _, tag := range tags {
		k, v, _ := strings.Cut(tag, "=")
		b.WithTag(k, v)
	}

	_, err := b.Publish(ctx)
	return err
}

func runInsight(ctx context.Context, client *logsnag.Client, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("insight", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "insight title (required)")
	value := fs.String("value", "", "insight value (required)")
	kind := fs.String("type", "string", "value type: string, int or bool")
	icon := fs.String("icon", "", "insight icon")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" || !isFlagSet(fs, "value") {
		return errors.New("-title and -value are required")
	}

	v, err := logsnag.ParseInsightValue(*kind, *value)
	if err != nil {
		return err
	}

	_, err = client.Insight(*title, v).WithIcon(*icon).Publish(ctx)
	return err
}

// logRequestMetrics logs every sample gathered from reg.
func logRequestMetrics(logger *slog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("gather metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]any, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, slog.String(lp.GetName(), lp.GetValue()))
			}
			attrs := []any{"metric", mf.GetName(), slog.Group("labels", labels...)}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				attrs = append(attrs, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			}
			logger.Info("request metric", attrs...)
		}
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
