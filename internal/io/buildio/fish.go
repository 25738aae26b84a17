package buildio

import (
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/oceandata/hydromon/internal/ent/record"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

// importFish uploads the fish measurements CSV. The file is optional; a
// missing file is logged and the build continues.
func (b *buildio) importFish() error {
	slog.Info("Uploading data for fish table")

	if _, err := os.Stat(b.cfg.FishFile); err != nil {
		slog.Warn("No fish measurements file, skipping",
			"path", b.cfg.FishFile)
		return nil
	}

	_ = b.truncateTable("fish")

	r, f, err := b.openCSV(b.cfg.FishFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// skip header
	if _, err = r.Read(); err != nil {
		slog.Error("cannot read fish header", "error", err)
		return err
	}

	var count int64
	batch := make([]model.Fish, 0, b.cfg.BatchSize)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("cannot read fish file", "error", err)
			return err
		}
		fish, err := record.ParseFishRow(row)
		if err != nil {
			slog.Warn("Skipping row", "error", err, "row", row)
			continue
		}
		batch = append(batch, fish)
		if len(batch) == b.cfg.BatchSize {
			saved, err := b.saveFish(batch)
			if err != nil {
				return err
			}
			count += saved
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		saved, err := b.saveFish(batch)
		if err != nil {
			return err
		}
		count += saved
	}

	slog.Info("Uploaded fish table", "records", humanize.Comma(count))
	return nil
}
