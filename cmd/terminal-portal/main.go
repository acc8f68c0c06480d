package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"terminal-portal/internal/auth"
	"terminal-portal/internal/config"
	"terminal-portal/internal/db"
	"terminal-portal/internal/events"
	httphandler "terminal-portal/internal/http"
	"terminal-portal/internal/logger"
	"terminal-portal/internal/metrics"
	"terminal-portal/internal/report"
	"terminal-portal/internal/repository"
	"terminal-portal/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	collector := metrics.NewCollector()

	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log, collector)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("nats unavailable, check-in events disabled")
		} else {
			publisher = natsPublisher
		}
	}

	movementRepo := repository.NewMovementRepository(database)
	checkinRepo := repository.NewCheckinRepository(database)
	fleetRepo := repository.NewFleetRepository(database)
	masterRepo := repository.NewMasterRepository(database)
	newsRepo := repository.NewNewsRepository(database)
	userRepo := repository.NewUserRepository(database)

	services := httphandler.Services{
		Schedule: service.NewScheduleService(movementRepo, newsRepo, cfg.Terminal.Location, cfg.Terminal.WelcomeMessage, collector, log),
		Checkin:  service.NewCheckinService(checkinRepo, movementRepo, fleetRepo, publisher, collector, log),
		Fleet:    service.NewFleetService(fleetRepo),
		Master:   service.NewMasterDataService(masterRepo),
		News:     service.NewNewsService(newsRepo),
		Users:    service.NewUserService(userRepo),
		Reports:  report.NewService(checkinRepo, cfg.Terminal.Location),
	}

	issuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = collector.Handler()
	}

	handler := httphandler.NewHandler(services, issuer, cfg.Environment, log)
	router := httphandler.NewRouter(handler, tokenParser, metricsHandler, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", addr).Str("timezone", cfg.Terminal.Timezone).Msg("starting terminal portal")
	serveErr := serve(ctx, srv, log)
	if serveErr != nil {
		log.Error().Err(serveErr).Msg("server stopped")
	}

	publisher.Close()
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if serveErr != nil {
		stop()
		os.Exit(1)
	}
}

// serve runs srv until ctx is cancelled or the listener fails. Resources owned
// by main are left to the caller in both cases.
func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
