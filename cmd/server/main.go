package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/guimauveb/guimauve.io/internal/api"
	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/database"
	"github.com/guimauveb/guimauve.io/internal/logsink"
	"github.com/guimauveb/guimauve.io/internal/repository"
	"github.com/guimauveb/guimauve.io/internal/service"
	"github.com/guimauveb/guimauve.io/pkg/logger"
)

func main() {
	// A missing .env is fine in production
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().
		Bool("editable", cfg.Editable).
		Bool("dotenv", envErr == nil).
		Msg("Starting guimauve API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Persist WARN+ entries once the logs table exists. The sink reports
	// its own failures through the stdout-only logger.
	var sink *logsink.Sink
	if cfg.Log.Persist {
		sink = logsink.New(repos.Log, logsink.Options{}, log)
		sink.Start(context.Background())
		log = logger.NewWithWriter(os.Stdout, cfg.Log.Level, cfg.Log.Format, sink)
	}

	// Initialize services
	services := service.NewServices(repos, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush persisted logs after the last request finished
	if sink != nil {
		sink.Stop()
	}

	log.Info().Msg("Server exited gracefully")
}
