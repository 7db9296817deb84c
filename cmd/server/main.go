package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/product_hub/internal/config"
	"github.com/Skotchmaster/product_hub/internal/db"
	"github.com/Skotchmaster/product_hub/internal/events"
	"github.com/Skotchmaster/product_hub/internal/guard"
	"github.com/Skotchmaster/product_hub/internal/handlers"
	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/repo"
	"github.com/Skotchmaster/product_hub/internal/search"
	"github.com/Skotchmaster/product_hub/internal/service"
	"github.com/Skotchmaster/product_hub/internal/session"
	"github.com/Skotchmaster/product_hub/internal/tokens"
	httpserver "github.com/Skotchmaster/product_hub/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_init_error", "error", err)
		os.Exit(1)
	}
	store := repo.New(gdb)

	publisher := events.New(cfg.KafkaBrokers)

	var index search.Index = search.NewDBIndex(store)
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Error("es_init_error", "error", err)
			os.Exit(1)
		}
		index = search.NewESIndex(esClient, cfg.ESIndex)
	}

	tok := tokens.New(tokens.Config{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, store)
	sess := session.New(session.Config{
		Secure:     cfg.SecureCookies,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	catalog := &service.CatalogService{Repo: store, Index: index, Events: publisher}

	e := httpserver.New(&httpserver.Deps{
		DB:             gdb,
		Guard:          &guard.Guard{Tokens: tok, Users: store, Session: sess},
		AuthHandler:    &handlers.AuthHandler{Svc: &service.AuthService{Repo: store, Tokens: tok, Events: publisher}, Session: sess},
		ProductHandler: &handlers.ProductHandler{Svc: catalog},
		SearchHandler:  &handlers.SearchHandler{Svc: catalog},
		TrustedOrigins: cfg.CSRFTrustedOrigins,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_server_start", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			stop()
		}
	}()

	pruneDone := make(chan struct{})
	go func() {
		defer close(pruneDone)
		store.RunBlacklistPruner(ctx, cfg.BlacklistPruneInterval, logger.With("worker", "blacklist_pruner"))
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	<-pruneDone

	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}
