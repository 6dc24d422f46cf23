package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/weiawesome/camlink/internal/archive"
	"github.com/weiawesome/camlink/internal/config"
	"github.com/weiawesome/camlink/internal/events"
	"github.com/weiawesome/camlink/internal/handler"
	"github.com/weiawesome/camlink/internal/hub"
	"github.com/weiawesome/camlink/internal/reaper"
	"github.com/weiawesome/camlink/internal/registry"
	"github.com/weiawesome/camlink/internal/roomcode"
	"github.com/weiawesome/camlink/internal/service"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/middleware"
	"github.com/weiawesome/camlink/pkg/pubsub"
	"github.com/weiawesome/camlink/pkg/storage"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP + WebSocket server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, ServiceName: "camlink"})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("version", Version).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("pubsub", cfg.PubSub.Driver).
		Bool("archive", cfg.Archive.Enabled).
		Msg("starting camlink")

	// Lifecycle event bus
	ps, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		return fmt.Errorf("failed to create pubsub: %w", err)
	}
	defer ps.Close()

	producer := events.NewAsyncProducer(ps, cfg.Events.QueueSize, cfg.Events.PublishTimeout)

	// Optional screenshot archive
	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		store, err := storage.New(ctx, cfg.Archive.Storage)
		if err != nil {
			return fmt.Errorf("failed to create archive storage: %w", err)
		}
		archiver = archive.New(store, cfg.Archive)
	}

	// Core
	rooms := registry.New(roomcode.NewDefault(), registry.WithMaxAttempts(cfg.Room.MaxCodeAttempts))
	h := hub.NewHub(cfg.WebSocket)

	opts := []service.Option{service.WithEvents(producer)}
	if archiver != nil {
		opts = append(opts, service.WithArchive(archiver))
	}
	svc := service.NewRelayService(rooms, h, service.Config{
		ActiveThreshold: cfg.Room.ActiveThreshold,
		IdleTimeout:     cfg.Reaper.IdleTimeout,
	}, opts...)

	// HTTP
	var screenshots handler.ScreenshotArchive
	if archiver != nil {
		screenshots = archiver
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.CORSOrigins

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(handler.NewWSHandler(h, svc), handler.NewHTTPHandler(svc, h, screenshots), cors, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return h.Run(gCtx) })
	g.Go(func() error { return producer.Run(gCtx) })
	g.Go(func() error { return reaper.New(svc, cfg.Reaper).Run(gCtx) })
	g.Go(func() error {
		if err := events.NewCommandConsumer(ps, svc).Run(gCtx); err != nil {
			// Operator commands are optional; the relay keeps running.
			logger.Warn().Err(err).Msg("operator command consumer stopped")
		}
		return nil
	})
	if archiver != nil {
		g.Go(func() error { return archiver.Run(gCtx) })
	}

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("camlink listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down camlink")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("camlink stopped")
	return nil
}
