package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javajoker/ifm-backend/internal/database"
	"github.com/javajoker/ifm-backend/internal/i18n"
	"github.com/javajoker/ifm-backend/internal/router"
	"github.com/javajoker/ifm-backend/internal/services"
)

const shutdownTimeout = 30 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API",
		Long:         "Connects to the database, migrates, optionally seeds demo data, clears stale resale listings and serves the API until interrupted.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
				return fmt.Errorf("initialize i18n: %w", err)
			}

			db, err := database.Initialize(cfg.Database)
			if err != nil {
				return fmt.Errorf("initialize database: %w", err)
			}
			defer database.Close(db)

			if err := database.RunMigrations(db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			database.SeedInitialData(db, cfg.Seed)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if removed, err := services.NewResaleService(db, nil).PruneOrphanListings(ctx); err != nil {
				logrus.WithError(err).Warn("Failed to prune orphan resale listings")
			} else if removed > 0 {
				logrus.WithField("removed", removed).Info("Pruned orphan resale listings")
			}

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
				Handler:      router.Initialize(db, cfg, prometheus.NewRegistry()),
				ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
				IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			}

			return serve(ctx, srv)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "override SERVER_PORT")

	return cmd
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("Server exited")
	return nil
}
