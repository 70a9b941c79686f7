package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moderncaliberwebdev/haus/internal/config"
	"github.com/moderncaliberwebdev/haus/internal/game"
	"github.com/moderncaliberwebdev/haus/internal/repository"
	"github.com/moderncaliberwebdev/haus/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Haus server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Game engine
	engineOpts := []game.EngineOption{game.WithThreshold(cfg.Game.WinThreshold)}
	if cfg.Game.Seed != 0 {
		engineOpts = append(engineOpts, game.WithSeed(cfg.Game.Seed))
	}
	if cfg.Game.Replay.Enabled {
		engineOpts = append(engineOpts, game.WithReplayRecorder(game.NewReplayRecorder(logger, cfg.Game.Replay.Directory)))
		logger.Info("replay recording enabled", zap.String("directory", cfg.Game.Replay.Directory))
	}
	engine := game.NewEngine(logger, engineOpts...)
	logger.Info("game engine initialized",
		zap.Int("win_threshold", cfg.Game.WinThreshold),
		zap.Bool("auto_deal", cfg.Game.AutoDeal),
	)

	// Results store
	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		sink := server.NewResultsSink(engine, repository.NewResultStore(db, logger), logger)
		defer sink.Close()
		go sink.Run(ctx)
	} else {
		logger.Warn("database disabled; results will not be persisted")
	}

	// Operations endpoint
	ops := server.NewOpsServer(cfg.Server.GRPC, logger)
	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}
	go func() {
		if serveErr := ops.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	// WebSocket tables
	hub := server.NewHub(cfg.Server.WebSocket, engine, cfg.Game.AutoDeal, logger)
	go hub.Run(ctx)
	httpServer := server.NewHTTPServer(cfg.Server.WebSocket, hub)
	go func() {
		logger.Info("starting WebSocket server",
			zap.String("address", cfg.Server.WebSocket.Address),
			zap.String("path", cfg.Server.WebSocket.Path),
		)
		if wsErr := httpServer.ListenAndServe(); wsErr != nil && !errors.Is(wsErr, http.ErrServerClosed) {
			logger.Error("WebSocket server error", zap.Error(wsErr))
		}
	}()

	logger.Info("Haus server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	ops.SetServing(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket server shutdown", zap.Error(err))
	}
	cancel()

	ops.Stop()

	for _, id := range engine.GameIDs() {
		if err := engine.EndGame(id); err != nil {
			logger.Warn("failed to end game", zap.String("game_id", id), zap.Error(err))
		}
	}

	logger.Info("Haus server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
