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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/campuscare/wellbeing-chat/internal/api"
	"github.com/campuscare/wellbeing-chat/internal/auth"
	"github.com/campuscare/wellbeing-chat/internal/core"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	var closers []closer

	dbStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", cfg.StoreDriver, err)
	}
	closers = append(closers, dbStore.Close)

	revoked, closeRevoked, err := openRevocationList(ctx, cfg)
	if err != nil {
		_ = closeAll(ctx, closers)
		return err
	}
	closers = append(closers, closeRevoked)

	composer, closeComposer, err := buildComposer(ctx, cfg)
	if err != nil {
		_ = closeAll(ctx, closers)
		return err
	}
	closers = append(closers, closeComposer)

	defer func() {
		if err := closeAll(context.Background(), closers); err != nil {
			log.Warn("Failed to release resources", logrus.Fields{"error": err.Error()})
		}
	}()

	chatService := core.NewChatService(dbStore, composer, cfg.HistoryWindow, log.With(logrus.Fields{"component": "chat"}))
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, revoked)

	apiHandler := api.NewAPIHandler(chatService, sessions, cfg.CookieSecure, log.With(logrus.Fields{"component": "api"}))
	router := api.NewRouter(apiHandler, log)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // three LLM calls per chat turn
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", logrus.Fields{
			"addr":  serverAddr,
			"store": cfg.StoreDriver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		return nil
	case sig := <-quit:
		log.Info("Shutting down server", logrus.Fields{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting gracefully")
	return nil
}
