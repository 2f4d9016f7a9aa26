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

	"chat-relay/api"
	"chat-relay/hub"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/presence"
	"chat-relay/repositories"
	"chat-relay/router"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	ws "chat-relay/websocket"

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
// centralizes error reporting, so deferred cleanups (database close,
// registry shutdown) execute on every exit path.
func run() error {
	// 1. Configuration & Logger
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment variables")
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core components
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	userRepository := repositories.NewUserRepository(db)
	friendRepository := repositories.NewFriendRepository(db)

	monitoring := observability.NewManager(log)
	registry := presence.NewRegistry()
	defer registry.Shutdown()
	multiplexer := hub.New(log)

	resolver := services.NewSessionResolver([]byte(config.SessionKey))
	chatService := services.NewChatService(log, messageRepository, userRepository)
	eventRouter := router.NewRouter(log, multiplexer, registry, chatService, monitoring)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(
		workers.NewBadgerGCWorker(log, db, config.GCInterval),
		workers.NewStatsWorker(log, multiplexer, registry, monitoring, config.StatsInterval),
	)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		supervisor.Run(ctx)
	}()

	// 6. HTTP server: API routes + websocket endpoint
	wsHandler := ws.Handler(log, resolver, eventRouter, monitoring)
	apiServer := api.NewServer(log, resolver, userRepository, messageRepository, friendRepository, monitoring)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: apiServer.Routes(wsHandler),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
