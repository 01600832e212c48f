package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/taxcalc/internal/api"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP",
		Long: `Start the JSON API.

Settings can be overridden from the environment or a .env file:
  TAXCALC_PORT                listen port
  TAXCALC_CATALOG             catalog file
  TAXCALC_ALLOWED_COUNTRIES   comma-separated allow-list, "*" for all
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			if err := a.settings.ApplyEnv(files...); err != nil {
				return err
			}

			level := slog.LevelInfo
			if a.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			if a.settings.Server.Mode != "" {
				gin.SetMode(a.settings.Server.Mode)
			}

			c, err := a.settings.LoadCatalog()
			if err != nil {
				return err
			}
			for _, p := range c.Problems() {
				slog.Warn("skipping jurisdiction", "error", p)
			}

			router := api.NewRouter(api.NewHandler(c, a.settings.Filter()))
			srv := &http.Server{
				Addr:              a.settings.Address(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("listening", "addr", srv.Addr, "jurisdictions", c.Len())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Env file to load (default: .env if present)")
	return cmd
}
