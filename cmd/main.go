package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"chatline/api"
	"chatline/auth"
	"chatline/moderation"
	"chatline/presence"
	"chatline/repositories"
	"chatline/search"
	"chatline/services"
	"chatline/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning an error instead of exiting directly guarantees that the deferred
// cleanups (database, search index) execute before the process stops.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.NewMessageIndex(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Domain wiring
	moderator, err := moderation.NewModerator(censoredWords(config.CensoredWords),
		maskRune(config.ModerationCharReplacement), log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	registry := presence.NewRegistry(log)
	dispatcher := presence.NewDispatcher(registry, log)
	issuer := auth.NewIssuer(config.JWTSecret, config.AuthTokenDuration)

	userRepository := repositories.NewUserRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	imageRepository := repositories.NewImageRepository(db)

	authService := services.NewAuthService(userRepository, imageRepository, issuer)
	chatService := services.NewChatService(messageRepository, userRepository, imageRepository,
		index, moderator, dispatcher, log)

	// 4. Transport
	wsHandler := ws.NewHandler(log, registry, dispatcher, config.ConnectionBufferSize,
		config.AllowedOrigin)
	handler := api.NewHandler(log, authService, chatService, imageRepository, registry, issuer)
	router := api.NewRouter(log, handler, wsHandler.ServeWS, issuer, config.AllowedOrigin)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func maskRune(raw string) rune {
	for _, r := range raw {
		return r
	}
	return '*'
}

// censoredWords splits the comma separated CENSORED_WORDS value,
// dropping empty entries so a trailing comma is harmless.
func censoredWords(raw string) []string {
	var words []string
	for _, word := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}
