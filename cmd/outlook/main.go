package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-outlook/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/weather-outlook/internal/adapter/kafka"
	"github.com/couchcryptid/weather-outlook/internal/adapter/nws"
	"github.com/couchcryptid/weather-outlook/internal/alerting"
	"github.com/couchcryptid/weather-outlook/internal/config"
	"github.com/couchcryptid/weather-outlook/internal/dispatch"
	"github.com/couchcryptid/weather-outlook/internal/observability"
	"github.com/couchcryptid/weather-outlook/internal/rules"
	"github.com/couchcryptid/weather-outlook/internal/service"
)

func main() {
	cfgFile := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	metrics := observability.NewMetrics()

	// An invalid rules file is a deployment mistake; refuse to start rather
	// than silently dropping actions.
	rulesData, err := cfg.RulesData()
	if err != nil {
		logger.Error("failed to read alert rules", "error", err)
		os.Exit(1)
	}
	ruleCfg, err := rules.Parse(rulesData)
	if err != nil {
		logger.Error("invalid alert rules", "error", err)
		os.Exit(1)
	}

	client := nws.NewClient(cfg.NWS.UserAgent, cfg.NWS.Timeout, logger, metrics)
	cached := nws.NewCachedClient(client, cfg.NWS.CacheSize, metrics)

	locations := make([]service.Location, len(cfg.Locations))
	for i, loc := range cfg.Locations {
		locations[i] = service.Location{Name: loc.Name, Lat: loc.Lat, Lon: loc.Lon}
	}
	weather := service.NewWeather(cached, locations, cfg.Weather.CacheTTL, clockwork.NewRealClock(), logger, metrics)

	dispatcher := dispatch.NewDispatcher(cfg.Alerts.WebhookTimeout, logger, metrics)

	var source alerting.Source
	var reader *kafkaadapter.Reader
	if cfg.Kafka.Enabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		source = reader
		logger.Info("kafka alert stream enabled", "topic", cfg.Kafka.AlertTopic, "group", cfg.Kafka.GroupID)
	} else {
		logger.Info("kafka alert stream disabled")
	}

	engine := alerting.New(source, ruleCfg, dispatcher, logger, metrics)

	srv := httpapi.NewServer(cfg.Server.Addr, cfg.Server.APIKey, weather, engine, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start alert engine.
	go func() {
		if err := engine.Run(ctx); err != nil {
			logger.Error("alert engine error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
