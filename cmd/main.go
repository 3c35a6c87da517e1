package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"presence-lab/repositories"
	"presence-lab/runtime"
	"presence-lab/runtime/workers"
	"presence-lab/services"
	"presence-lab/sink"
	"presence-lab/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every deferred cleanup (database close,
// pending durable writes) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Presence engine wiring
	supervisor := workers.NewSupervisor(log)
	registry := runtime.NewRegistry()
	presenceRepository := repositories.NewPresenceRepository(db, log)
	presenceSink := sink.NewPresenceSink(presenceRepository, log,
		config.PersistDebounce, config.PersistMaxInFlight)

	engine := runtime.NewEngine(log, supervisor, registry, presenceRepository,
		config.BufferSize, config.MaxMessageLength, config.SinkTimeout)
	engine.AddSinks(presenceSink)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the engine and its supervised workers
	health := workers.NewHealthWorker(log, registry, config.HealthInterval)
	engine.Start(ctx, health)

	// 6. HTTP server: WebSocket endpoint + account endpoints
	accountService := services.NewAccountService(
		repositories.NewUserRepository(db), config.AuthTokenDuration)
	server := ws.NewServer(log, engine, accountService, config.ConnectionBufferSize)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting presence server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup: stop accepting connections, stop workers, then
	// flush whatever the write-behind buffer still holds.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	engine.Stop()
	presenceSink.Flush()
	log.Info("Program stopped cleanly")

	return nil
}
