package hydromon

import (
	"github.com/oceandata/hydromon/internal/ent/build"
	"github.com/oceandata/hydromon/internal/ent/ingest"
)

// HydroMon coordinates the normalization pipeline and the database
// build.
type HydroMon interface {
	// Ingest walks the raw data tree, normalizes every CSV file and
	// writes the combined dataset.
	Ingest(ingest.Ingestor) (ingest.Report, error)

	// Build populates the PostgreSQL database from the combined
	// dataset.
	Build(build.Builder) error
}
