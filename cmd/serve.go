package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oceandata/hydromon/internal/io/apiio"
	"github.com/oceandata/hydromon/internal/io/storeio"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the JSON API server",
	Long: `Serves water-quality observations, fish measurements and user
accounts over HTTP. The database must be populated with the build
command first.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := config.New(opts...)

		st, err := storeio.New(cfg)
		if err != nil {
			slog.Error("Cannot connect to database", "error", err)
			os.Exit(1)
		}
		defer st.Close()
		if err = storeio.EnsureDefaultAdmin(st); err != nil {
			slog.Error("Cannot create default admin", "error", err)
			os.Exit(1)
		}

		srv := apiio.New(cfg, st, apiio.NewMetrics())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sig
			ctx, cancel := context.WithTimeout(
				context.Background(), 10*time.Second,
			)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("Shutdown failed", "error", err)
			}
		}()

		if err = srv.Start(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
