package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"comms-hub/ai"
	"comms-hub/api"
	"comms-hub/auth"
	"comms-hub/escalation"
	"comms-hub/internal"
	"comms-hub/observability"
	"comms-hub/ratelimit"
	"comms-hub/repositories"
	"comms-hub/runtime/workers"
	"comms-hub/search"
	"comms-hub/store"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.LoggerFromString(config.LogLevel)

	// 2. Archive database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("archive database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Pipeline components
	monitoring := observability.NewMonitor()
	commLog := store.NewCommLog(log)
	limiter := ratelimit.NewLimiter()
	archive := repositories.NewMessageArchive(db, log)

	index, err := search.NewIndex(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() { _ = index.Close() }()

	engine, err := escalation.NewEngine(splitTriggers(config.EscalationTriggers))
	if err != nil {
		return fmt.Errorf("escalation engine setup failed: %w", err)
	}

	generator := ai.NewClient(config.GenerationBaseURL, config.GenerationAPIKey,
		config.GenerationModel, config.GenerationTimeout, log)

	// 4. Workers & supervision
	fanout := workers.NewEventFanout(log, config.BufferSize, config.SinkTimeout, monitoring)
	fanout.Add(archive, index)
	escalations := workers.NewEscalationWorker(log, config.EscalationQueueSize,
		generator, commLog, fanout, monitoring, config.GenerationTimeout)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		fanout,
		escalations,
		workers.NewHealthWorker(log, monitoring, commLog, escalations, config.HealthInterval),
		workers.NewCleanupWorker(log, limiter, config.ReadWindow),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP server
	verifier := auth.NewVerifier(auth.NewJWTVerifier(config.JWTSecret), log)
	handler := api.NewHandler(log, commLog, limiter, verifier, engine,
		escalations, fanout, index, monitoring, api.Policy{
			WriteMaxRequests: config.WriteMaxRequests,
			WriteWindow:      config.WriteWindow,
			ReadMaxRequests:  config.ReadMaxRequests,
			ReadWindow:       config.ReadWindow,
		})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{Addr: address, Handler: handler.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}

func splitTriggers(raw string) []string {
	var triggers []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			triggers = append(triggers, t)
		}
	}
	return triggers
}
