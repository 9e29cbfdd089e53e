package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/mediavault/internal/auth"
	"github.com/abduss/mediavault/internal/config"
	"github.com/abduss/mediavault/internal/journal"
	"github.com/abduss/mediavault/internal/server"
	"github.com/abduss/mediavault/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config, logg *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	root, err := storage.EnsureRoot(cfg.Storage.Root)
	if err != nil {
		return err
	}
	cfg.Storage.Root = root

	if cfg.Storage.CreateSymlink {
		storage.LinkServingDir(logg, root, cfg.Storage.SymlinkDir)
	}

	mediaService, err := newMediaService(cfg, logg)
	if err != nil {
		return fmt.Errorf("init media service: %w", err)
	}

	var (
		dbPool   *pgxpool.Pool
		recorder journal.Recorder = journal.Nop{}
	)
	if cfg.Journal.Enabled {
		dbPool, err = storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer dbPool.Close()

		repo := journal.NewRepository(dbPool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		recorder = repo
	}

	authService := auth.NewService(cfg.Auth)
	if !authService.Enabled() {
		logg.Warn("JWT_SECRET is empty, protected routes accept anonymous requests")
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Dependencies{
		Config:      *cfg,
		DB:          dbPool,
		Media:       mediaService,
		AuthService: authService,
		Journal:     recorder,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("media vault listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("root", root),
			zap.Bool("sub_dirs", cfg.Storage.UseSubDirs),
			zap.Bool("journal", cfg.Journal.Enabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
		return err
	}
	return nil
}
