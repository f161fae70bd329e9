package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"library-server/internal/api"
	"library-server/internal/auth"
	"library-server/internal/config"
	"library-server/internal/logic"
	"library-server/internal/storage"
	"library-server/internal/storage/pg"
	"library-server/internal/storage/stubs"
)

const tokenTTL = 24 * time.Hour

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	db     storage.Storage
	server *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting library server")

	if err := app.initStorage(); err != nil {
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initStorage initializes the storage backend
func (a *App) initStorage() error {
	if a.config.UseMockDB {
		a.logger.Info("Using mock database")
		a.db = stubs.NewMockDB()
		return nil
	}

	a.logger.Info("Connecting to Postgres",
		zap.String("host", a.config.PostgresHost),
		zap.Int("port", a.config.PostgresPort),
		zap.String("database", a.config.PostgresDatabase),
		zap.String("user", a.config.PostgresUser),
	)

	db, err := pg.NewPostgresDB(a.config.PostgresDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	a.db = db
	a.logger.Info("Database connected")
	return nil
}

// initHTTPServer wires the API routes and the health check endpoint
func (a *App) initHTTPServer() {
	svc := logic.New(a.db)
	tokens := auth.NewManager(a.config.JWTSecret, tokenTTL)
	server := api.NewServer(svc, tokens, a.logger)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.Ping(r.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-sigChan

	a.logger.Info("Shutting down")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
