package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/api"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.HTTP.Addr
			}

			if app.Env == "prod" {
				gin.SetMode(gin.ReleaseMode)
			}

			router := api.NewRouter(
				api.NewHandler(app.Database, app.Locker, app.Logger, app.Settings),
				api.NewChecker(healthDeps(app)),
				app.Logger,
			)

			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("HTTP server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return fmt.Errorf("http server failed: %w", err)
			case sig := <-quit:
				app.Logger.Info("Shutting down HTTP server", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("http server shutdown failed: %w", err)
			}

			app.Logger.Info("HTTP server stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to http.addr from the config)")

	return cmd
}

func healthDeps(app *AppContext) map[string]api.Pinger {
	deps := map[string]api.Pinger{"postgres": app.Database}
	if redisLocker, ok := app.Locker.(*lock.RedisLocker); ok {
		deps["redis"] = redisLocker
	}
	return deps
}
