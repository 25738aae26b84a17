package buildio

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"

	"github.com/oceandata/hydromon/internal/ent/record"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

// importObservations is the second pass over the combined table. Rows are
// parsed by workers, their site IDs resolved from the key-value store, and
// the results uploaded in batches.
func (b *buildio) importObservations() error {
	slog.Info("Uploading data for hydro_data table")

	err := b.kvSites.Open()
	if err != nil {
		slog.Error("cannot open key-value store", "error", err)
		return err
	}
	defer b.kvSites.Close()

	_ = b.truncateTable("hydro_data")

	chIn := make(chan []string)
	chOut := make(chan []model.HydroData)
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		return b.loadCombinedRows(ctx, chIn)
	})
	for i := 0; i < b.cfg.JobsNum; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return b.workerObservation(ctx, chIn, chOut)
		})
	}
	g.Go(func() error {
		return b.dbObservation(ctx, chOut)
	})

	go func() {
		wg.Wait()
		close(chOut)
	}()

	if err := g.Wait(); err != nil {
		slog.Error("error in goroutines", "error", err)
		return err
	}

	slog.Info("Uploaded hydro_data table")
	return nil
}

func (b *buildio) loadCombinedRows(
	ctx context.Context,
	chIn chan<- []string,
) error {
	r, f, err := b.openCSV(b.cfg.CombinedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// skip header
	_, err = r.Read()
	if err != nil {
		slog.Error("cannot read combined table header", "error", err)
		return err
	}
loop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			row, err := r.Read()
			if err == io.EOF {
				break loop
			}
			if err != nil {
				slog.Error("cannot read combined table", "error", err)
				return err
			}
			chIn <- row
		}
	}
	return nil
}

// workerObservation parses combined-table rows and prepares them for the
// database. The offline build is lenient: rows that cannot be imported
// (no date, incomplete site triple) are logged and skipped, they never
// abort the build.
func (b *buildio) workerObservation(
	ctx context.Context,
	chIn <-chan []string,
	chOut chan<- []model.HydroData,
) error {
	enc := gnfmt.GNgob{}
	res := make([]model.HydroData, 0, b.cfg.BatchSize)

loop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case row, ok := <-chIn:
			if !ok {
				break loop
			}
			hd, err := record.ParseCombined(row)
			if err != nil {
				slog.Warn("Skipping row", "error", err, "row", row)
				continue
			}

			key := record.SiteKey(hd.Location, hd.Basin, hd.SectionName)
			siteBytes, err := b.kvSites.GetValue([]byte(key))
			if err != nil {
				slog.Error("cannot get site from key-value store",
					"error", err, "key", key)
				return err
			}
			if siteBytes == nil {
				slog.Warn("Skipping row, unknown site", "key", key)
				continue
			}
			var site model.Site
			if err = enc.Decode(siteBytes, &site); err != nil {
				slog.Error("cannot decode site", "error", err)
				return err
			}
			hd.SiteID = site.ID

			res = append(res, hd)
			if len(res) == b.cfg.BatchSize {
				chOut <- res
				res = make([]model.HydroData, 0, b.cfg.BatchSize)
			}
		}
	}
	if len(res) > 0 {
		chOut <- res
	}
	return nil
}

func (b *buildio) dbObservation(
	ctx context.Context,
	chOut <-chan []model.HydroData,
) error {
	var count int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-chOut:
			if !ok {
				slog.Info("Observations are uploaded",
					"records", humanize.Comma(count))
				return nil
			}
			saved, err := b.saveHydroData(batch)
			if err != nil {
				slog.Error("cannot save observations", "error", err)
				return err
			}
			count += saved
		}
	}
}
