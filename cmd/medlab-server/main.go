package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medlab/medlab/internal/config"
	"github.com/medlab/medlab/internal/domain/catalog"
	"github.com/medlab/medlab/internal/domain/lab"
	"github.com/medlab/medlab/internal/domain/report"
	"github.com/medlab/medlab/internal/platform/auth"
	"github.com/medlab/medlab/internal/platform/db"
	"github.com/medlab/medlab/internal/platform/docstore"
	"github.com/medlab/medlab/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "medlab-server",
		Short: "Medical laboratory API server",
	}
	root.AddCommand(serveCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo labs into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

type stores struct {
	labs  lab.Repository
	tests catalog.Repository
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, func(), error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}

	labStore, err := docstore.NewPG(pool, docstore.Schema{Table: cfg.LabsTable, KeyColumn: "lab_id"})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	testStore, err := docstore.NewPG(pool, docstore.Schema{Table: cfg.TestsTable, KeyColumn: "lab_id"})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if err := labStore.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := testStore.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	s := &stores{
		labs:  lab.NewDocRepo(labStore),
		tests: catalog.NewDocRepo(testStore),
	}
	return s, pool.Close, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	issuer, err := auth.NewIssuer(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      auth.DefaultTokenTTL,
	})
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	labSvc := lab.NewService(st.labs, issuer)
	lab.NewHandler(labSvc).RegisterRoutes(e)

	reportSvc := report.NewService(st.labs)
	report.NewHandler(reportSvc).RegisterRoutes(e, auth.TokenMiddleware(issuer))

	catalogSvc := catalog.NewService(st.tests, st.labs)
	catalog.NewHandler(catalogSvc).RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()
	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func runSeed() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	n, err := lab.Seed(ctx, st.labs)
	if err != nil {
		return err
	}
	if n == 0 {
		logger.Info().Msg("labs already present, nothing seeded")
		return nil
	}
	logger.Info().Int("labs", n).Msg("demo labs seeded")
	return nil
}
