package cmd

import (
	"log/slog"
	"os"

	"github.com/oceandata/hydromon/internal/ent/kv"
	"github.com/oceandata/hydromon/internal/io/buildio"
	"github.com/oceandata/hydromon/internal/io/kvio"
	"github.com/oceandata/hydromon/internal/io/storeio"
	hydromon "github.com/oceandata/hydromon/pkg"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Loads the combined dataset into a PostgreSQL database",
	Long: `Recreates the database schema and populates it from the combined
dataset and the fish measurements file. The database is reset, all
previously loaded data is discarded.`,
	Run: func(_ *cobra.Command, _ []string) {
		var err error
		var kvSites kv.KeyVal
		cfg := config.New(opts...)
		hm := hydromon.New(cfg)
		kvSites, err = kvio.New(cfg.SitesKVDir)
		if err != nil {
			slog.Error("Cannot create sites Key-Value store", "error", err)
			os.Exit(1)
		}
		b, err := buildio.New(cfg, kvSites)
		if err != nil {
			slog.Error("Cannot create Builder", "error", err)
			os.Exit(1)
		}
		if err = hm.Build(b); err != nil {
			slog.Error("Cannot populate database", "error", err)
			os.Exit(1)
		}

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
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
