package cmd

import (
	"log/slog"
	"os"

	"github.com/oceandata/hydromon/internal/io/ingestio"
	hydromon "github.com/oceandata/hydromon/pkg"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/spf13/cobra"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalizes raw CSV files into the combined dataset",
	Long: `Walks the raw data tree (province/basin/section/year-month.csv),
normalizes every row and writes a single combined CSV file into the
processed directory. Files that cannot be read are reported and skipped.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := config.New(opts...)
		hm := hydromon.New(cfg)
		ing, err := ingestio.New(cfg)
		if err != nil {
			slog.Error("Cannot create Ingestor", "error", err)
			os.Exit(1)
		}
		if _, err = hm.Ingest(ing); err != nil {
			slog.Error("Cannot normalize raw data", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
