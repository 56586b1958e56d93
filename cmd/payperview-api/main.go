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

	"github.com/rs/zerolog"

	"github.com/satonic/payperview-api/internal/config"
	"github.com/satonic/payperview-api/internal/handlers"
	"github.com/satonic/payperview-api/internal/logger"
	"github.com/satonic/payperview-api/internal/oracle"
	"github.com/satonic/payperview-api/internal/services"
	"github.com/satonic/payperview-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("payperview-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var feed oracle.Feed
	if cfg.Oracle.URL != "" {
		feed = oracle.NewHTTPFeed(cfg.Oracle.URL, cfg.Oracle.Timeout)
		log.Info().Str("url", cfg.Oracle.URL).Msg("using http price feed")
	} else {
		feed = oracle.NewStaticFeed(cfg.Oracle.StaticPrice)
		log.Warn().Int64("price", cfg.Oracle.StaticPrice).Msg("no oracle url configured, using a static price")
	}
	adapter := oracle.NewAdapter(feed, oracle.Precision{
		Oracle: cfg.Oracle.Decimals,
		Native: cfg.Oracle.NativeDecimals,
		Fiat:   cfg.Oracle.FiatDecimals,
	}, oracle.WithMaxAge(cfg.Oracle.MaxAge))

	hub := handlers.NewHub(log)
	go hub.Run()

	opts := []services.ServiceOption{
		services.WithEvents(hub),
		services.WithDefaultTerms(services.DefaultTerms{
			Duration: cfg.Viewing.DefaultDuration,
			Price:    cfg.Viewing.DefaultPrice,
		}),
	}

	var (
		treasury services.Treasury = services.NewMemoryTreasury()
		assets   *store.AssetRepository
	)
	if cfg.Database.Enabled {
		db, err := store.NewDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Migrate()
		if err != nil {
			return err
		}
		log.Info().Int("applied", n).Msg("database migrated")

		assets = store.NewAssetRepository(db)
		treasury = store.NewSettlementRepository(db)
		opts = append(opts, services.WithJournal(assets))
	}

	ppv := services.NewPayPerViewService(adapter, treasury, log, opts...)
	if assets != nil {
		snapshot, err := assets.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		if err := ppv.Restore(snapshot); err != nil {
			return err
		}
	}

	authService := services.NewAuthService(services.NewWalletService(), cfg.Auth)
	router := handlers.NewRouter(handlers.RouterConfig{
		PayPerView:     ppv,
		Catalog:        services.NewCatalogService(ppv, treasury),
		Auth:           authService,
		Hub:            hub,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
