package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Huddle/internal/adapters/http"
	"github.com/dkeye/Huddle/internal/adapters/meeting"
	"github.com/dkeye/Huddle/internal/adapters/rtc"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if !cfg.Debug() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	dispatcher := app.NewDispatcher(1024)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	moderation := core.NewModerationStore(core.SystemClock)
	rooms := app.NewRoomManager(domain.DefaultSettings(cfg.Rooms.DefaultMaxParticipants), core.SystemClock, moderation)
	meetings := meeting.NewDirectory()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	o := orch.New(orch.Deps{
		Dispatcher:     dispatcher,
		Rooms:          rooms,
		Moderation:     moderation,
		Meetings:       meetings,
		Metrics:        collector,
		Policy:         app.SimplePolicy{},
		ICEServers:     rtc.ICEServers(cfg.ICEServers),
		ReconnectGrace: cfg.Rooms.ReconnectGrace,
		MaxNameLen:     cfg.Rooms.MaxNameLen,
	})

	r := router.SetupRouter(ctx, cfg, o, meetings, collector)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-dispatcherDone
	log.Info().Msg("Server exited gracefully")
}
