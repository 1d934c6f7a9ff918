// Command logsnag-receiver runs a local stand-in for the LogSnag API.
// Point the SDK at it with WithBaseURL or LOGSNAG_BASE_URL.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joshuawatkins04/logsnag_sdk/internal/config"
	"github.com/joshuawatkins04/logsnag_sdk/internal/receiver"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	store, err := receiver.NewStore(cfg.Receiver.DBPath)
	if err != nil {
		logger.Error("open store", "path", cfg.Receiver.DBPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := receiver.New(store, cfg.Receiver.APIToken, logger, reg)
	if err != nil {
		logger.Error("create receiver", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Receiver.ListenAddress); err != nil {
		logger.Error("receiver stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("receiver stopped")
}
