package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	words := WordList{Size: cfg.GridSize, Words: DefaultWords()}
	if cfg.WordsFile != "" {
		list, err := LoadWordList(cfg.WordsFile)
		if err != nil {
			logger.Error("cannot load word list", "path", cfg.WordsFile, "error", err)
			os.Exit(1)
		}
		if list.Size == 0 {
			list.Size = cfg.GridSize
		}
		words = *list
		logger.Info("word list loaded", "path", cfg.WordsFile, "words", len(words.Words), "size", words.Size)
	}

	var suggester WordSuggester
	if cfg.GCPProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPRegion, cfg.GeminiModel)
		if err != nil {
			logger.Error("cannot initialize Gemini", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		suggester = gemini
		logger.Info("Gemini client initialized", "project", cfg.GCPProjectID, "model", cfg.GeminiModel)
	} else {
		logger.Info("GCP project not set, themed word suggestions disabled")
	}

	srv := NewServer(NewStore(), words, suggester, logger)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv,
		// Cancel open event streams on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("server started", "addr", "http://localhost:"+cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	logger.Info("server stopped")
}
