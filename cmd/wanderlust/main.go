package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wanderlust/internal/config"
	"wanderlust/internal/http/handlers"
	applog "wanderlust/internal/log"
	"wanderlust/internal/metrics"
	"wanderlust/internal/repos"
	"wanderlust/internal/repos/docstore"
	"wanderlust/internal/services"
	"wanderlust/internal/sessions"
)

type stores struct {
	listings services.ListingStore
	reviews  services.ReviewStore
	ping     func(context.Context) error
	close    func() error
}

func openStores(cfg config.Config) (stores, error) {
	if cfg.UsesMongo() {
		m, err := docstore.Open(docstore.Config{URI: cfg.StoreURI, Database: cfg.StoreName, ConnectTimeout: cfg.StoreTimeout})
		if err != nil {
			return stores{}, err
		}
		log.Info().Str("backend", "mongodb").Str("database", cfg.StoreName).Msg("store opened")
		return stores{
			listings: docstore.NewListingRepository(m.Database),
			reviews:  docstore.NewReviewRepository(m.Database),
			ping:     m.Ping,
			close:    m.Close,
		}, nil
	}

	db, err := repos.OpenDB(cfg.StoreURI)
	if err != nil {
		return stores{}, err
	}
	log.Info().Str("backend", "sqlite").Str("path", cfg.StoreURI).Msg("store opened")
	return stores{
		listings: repos.NewListingRepo(db),
		reviews:  repos.NewReviewRepo(db),
		ping:     func(ctx context.Context) error { return repos.Ping(ctx, db) },
		close:    db.Close,
	}, nil
}

// setupLogging points the logger at stdout, plus cfg.LogFile when set.
// The returned func closes the log file.
func setupLogging(cfg config.Config, stdout io.Writer) (func() error, error) {
	if cfg.LogFile == "" {
		applog.Setup(cfg.AppEnv, stdout)
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		applog.Setup(cfg.AppEnv, stdout)
		return func() error { return nil }, err
	}
	applog.Setup(cfg.AppEnv, io.MultiWriter(stdout, f))
	return f.Close, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("wanderlust")
	}
}

func run() error {
	cfg := config.Load()
	closeLog, err := setupLogging(cfg, os.Stdout)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
	}
	defer func() { _ = closeLog() }()

	st, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	if cfg.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		n, err := services.SeedIfEmpty(ctx, st.listings)
		cancel()
		if err != nil {
			return fmt.Errorf("seed listings: %w", err)
		}
		if n > 0 {
			log.Info().Int("listings", n).Msg("seeded sample listings")
		}
	}

	sessionStore, closeSessions, err := sessions.NewStore(cfg.RedisURL, cfg.AppEnv == "prod")
	if err != nil {
		return fmt.Errorf("session storage: %w", err)
	}
	defer func() { _ = closeSessions() }()

	deps := handlers.NewDeps(st.listings, st.reviews, st.ping)
	app := handlers.NewApp(cfg, deps, sessionStore, metrics.InitRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ":"+cfg.Port).Msg("listening")
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
