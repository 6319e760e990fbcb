// Miod is the MIO backend daemon.
//
// It serves the coaching API over HTTP: affect classification,
// partnership scoring, the protocol knowledge library, conversations,
// documents and the rest of the client surface.
//
// Configuration is loaded from a YAML file plus MIOD_-prefixed
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults (~/.config/miod/config.yaml)
//	miod
//
//	# Explicit config file
//	miod -config /etc/miod/config.yaml
//
//	# Configure via environment
//	MIOD_SERVER_PORT=9090 MIOD_DATABASE_DSN=miod.db miod
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/affect"
	"github.com/mindhouselabs/miod/internal/config"
	"github.com/mindhouselabs/miod/internal/conversation"
	"github.com/mindhouselabs/miod/internal/functions"
	httpapi "github.com/mindhouselabs/miod/internal/http"
	"github.com/mindhouselabs/miod/internal/knowledge"
	"github.com/mindhouselabs/miod/internal/logging"
	"github.com/mindhouselabs/miod/internal/playback"
	"github.com/mindhouselabs/miod/internal/storage"
	"github.com/mindhouselabs/miod/internal/store"
	"github.com/mindhouselabs/miod/internal/webhooks"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/miod/config.yaml)")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  miod           Start the miod daemon\n")
			fmt.Fprintf(os.Stderr, "  miod version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("miod by Mindhouse Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the miod server and blocks until the context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize the structured logger
//  3. Open the relational store and run migrations
//  4. Connect object storage and the hosted function client
//  5. Open the knowledge index
//  6. Wire the HTTP server and start serving
//  7. Graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	appLogger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()
	logger := appLogger.Underlying()

	logger.Info("starting miod",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver))

	st, err := store.Open(cfg.Database, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	objects, err := storage.New(ctx, cfg.Storage, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("connecting object storage: %w", err)
	}

	fns := functions.New(cfg.Functions, logger.Named("functions"))

	var classifierOpts []affect.Option
	if cfg.Affect.RemoteOverride {
		classifierOpts = append(classifierOpts, affect.WithOverride(fns))
		logger.Info("remote affect override enabled")
	}
	classifier := affect.NewClassifier(logger.Named("affect"), classifierOpts...)

	library, err := knowledge.NewService(cfg.Knowledge, st, fns, logger.Named("knowledge"))
	if err != nil {
		return fmt.Errorf("opening knowledge index: %w", err)
	}

	dispatcher := webhooks.New(cfg.Webhooks, logger.Named("webhooks"))

	// Webhook endpoints are the only config safe to swap at runtime.
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, logger.Named("config"), func(next *config.Config) {
			dispatcher.SetEndpoints(next.Webhooks.Endpoints)
		})
		if err != nil {
			logger.Warn("config watcher unavailable, webhook endpoints are fixed", zap.Error(err))
		} else {
			go func() {
				if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Warn("config watcher stopped", zap.Error(err))
				}
			}()
		}
	}

	srv, err := httpapi.NewServer(httpapi.Deps{
		Store:      st,
		Objects:    objects,
		Coach:      fns,
		Binder:     fns,
		Knowledge:  library,
		Classifier: classifier,
		Condenser:  conversation.NewCondenser(0, logger.Named("condenser")),
		Playback:   playback.NewManager(logger.Named("playback")),
		Webhooks:   dispatcher,
	}, httpapi.NewMetrics(), logger.Named("http"), cfg.Server)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
