// Package hydromon coordinates conversion of raw water-quality CSV
// dumps into a normalized dataset and a relational database.
package hydromon

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/oceandata/hydromon/internal/ent/build"
	"github.com/oceandata/hydromon/internal/ent/ingest"
	"github.com/oceandata/hydromon/pkg/config"
)

var (
	// Version is the version of hydromon, it is set by the build
	// process.
	Version = "v0.1.0+dev"
	// Build is a timestamp of the compilation, it is set by the build
	// process.
	Build string
)

type hydromon struct {
	cfg config.Config
}

// New creates a HydroMon instance.
func New(cfg config.Config) HydroMon {
	return hydromon{cfg: cfg}
}

func (hm hydromon) Ingest(ing ingest.Ingestor) (ingest.Report, error) {
	slog.Info("Normalizing raw data", "dir", hm.cfg.DataDir)
	rep, err := ing.Ingest()
	if err != nil {
		return rep, fmt.Errorf("ingest failed: %w", err)
	}
	slog.Info("Normalization finished",
		"files", rep.Files,
		"failed", rep.Failed,
		"records", humanize.Comma(int64(rep.Records)),
	)
	return rep, nil
}

func (hm hydromon) Build(b build.Builder) error {
	slog.Info("Building database", "database", hm.cfg.PgDB)
	if err := b.Build(); err != nil {
		return fmt.Errorf("database build failed: %w", err)
	}
	return nil
}
