package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	authStore "github.com/MrJamesThe3rd/invoicer/internal/auth/store"
	"github.com/MrJamesThe3rd/invoicer/internal/builder"
	"github.com/MrJamesThe3rd/invoicer/internal/client"
	clientStore "github.com/MrJamesThe3rd/invoicer/internal/client/store"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
	"github.com/MrJamesThe3rd/invoicer/internal/database"
	"github.com/MrJamesThe3rd/invoicer/internal/export"
	invoicerHttp "github.com/MrJamesThe3rd/invoicer/internal/http"
	authHandler "github.com/MrJamesThe3rd/invoicer/internal/http/auth"
	catalogHandler "github.com/MrJamesThe3rd/invoicer/internal/http/catalog"
	clientHandler "github.com/MrJamesThe3rd/invoicer/internal/http/client"
	draftHandler "github.com/MrJamesThe3rd/invoicer/internal/http/draft"
	exportHandler "github.com/MrJamesThe3rd/invoicer/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/invoicer/internal/http/importer"
	invoiceHandler "github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	settingsHandler "github.com/MrJamesThe3rd/invoicer/internal/http/settings"
	"github.com/MrJamesThe3rd/invoicer/internal/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicer/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicer/internal/kv"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/settings"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.Logger())

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	store, err := newKV(ctx, cfg)
	if err != nil {
		return err
	}

	var (
		authService    = auth.NewService(authStore.New(db), auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL), store)
		invoiceService = invoice.NewService(invoiceStore.New(db))
		settingsStore  = settings.New(store)
		builderService = builder.NewService(builder.NewDraftStore(store), builder.NewSubmitter(invoiceService, settingsStore))
		clientService  = client.NewService(clientStore.New(db))
		importService  = importer.NewService()
		formatter      = render.NewFormatter(cfg.Invoice.CurrencySymbol, cfg.Invoice.CurrencyCode, cfg.Invoice.PhoneRegion)
		exportService  = export.NewService(invoiceService, formatter)
	)

	router := invoicerHttp.New(authService, cfg.CORS.AllowedOrigins, invoicerHttp.Handlers{
		Auth:     authHandler.NewHandler(authService),
		Catalog:  catalogHandler.NewHandler(),
		Settings: settingsHandler.NewHandler(settingsStore),
		Drafts:   draftHandler.NewHandler(builderService),
		Invoices: invoiceHandler.NewHandler(invoiceService, formatter),
		Clients:  clientHandler.NewHandler(clientService),
		Import:   importHandler.NewHandler(importService, invoiceService),
		Export:   exportHandler.NewHandler(exportService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// newKV returns the Redis-backed store when an address is configured and an
// in-process store otherwise.
func newKV(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("REDIS_ADDR not set, sessions and drafts are kept in memory")
		return kv.NewMemory(), nil
	}

	client, err := kv.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return kv.NewRedis(client, cfg.App.Name), nil
}
