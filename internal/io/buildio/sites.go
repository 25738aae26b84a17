package buildio

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v2"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"

	"github.com/oceandata/hydromon/internal/ent/record"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

// importSites is the first pass over the combined table. It collects the
// unique (location, basin, section_name) triples, derives their UUID v5
// IDs, uploads the sites table, and records every triple in the key-value
// store so the observations pass can resolve site IDs without the
// database.
func (b *buildio) importSites() error {
	slog.Info("Uploading data for sites table")

	err := b.kvSites.Open()
	if err != nil {
		slog.Error("cannot open key-value store", "error", err)
		return err
	}
	defer b.kvSites.Close()

	_ = b.truncateTable("sites")

	r, f, err := b.openCSV(b.cfg.CombinedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// skip header
	if _, err = r.Read(); err != nil {
		slog.Error("cannot read combined table header", "error", err)
		return err
	}

	kvTxn, err := b.kvSites.GetTransaction()
	if err != nil {
		slog.Error("cannot make key-value transaction", "error", err)
		return err
	}
	enc := gnfmt.GNgob{}

	seen := make(map[string]struct{})
	sites := make([]model.Site, 0, b.cfg.BatchSize)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("cannot read combined table", "error", err)
			return err
		}
		site, ok := siteFromRow(row)
		if !ok {
			continue
		}
		key := record.SiteKey(site.Location, site.Basin, site.SectionName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		valBytes, err := enc.Encode(site)
		if err != nil {
			slog.Error("cannot encode site", "error", err)
			return err
		}
		if err = kvTxn.Set([]byte(key), valBytes); err == badger.ErrTxnTooBig {
			if err = kvTxn.Commit(); err != nil {
				slog.Error("cannot commit key-value transaction", "error", err)
				return err
			}
			kvTxn, err = b.kvSites.GetTransaction()
			if err != nil {
				return err
			}
			if err = kvTxn.Set([]byte(key), valBytes); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		sites = append(sites, site)
		if len(sites) == b.cfg.BatchSize {
			if err = b.saveSites(sites); err != nil {
				return err
			}
			sites = sites[:0]
		}
	}
	if err = b.saveSites(sites); err != nil {
		return err
	}

	if err = kvTxn.Commit(); err != nil {
		slog.Error("cannot commit key-value transaction", "error", err)
		return err
	}

	slog.Info("Uploaded sites table",
		"records", humanize.Comma(int64(len(seen))))
	return nil
}

// siteFromRow extracts the monitoring-site triple out of a combined-table
// row. Rows whose triple is incomplete produce no site; the observations
// pass skips them for the same reason.
func siteFromRow(row []string) (model.Site, bool) {
	var res model.Site
	if len(row) != record.FieldsNum {
		return res, false
	}
	var ok bool
	if res.Location, ok = normText(row[0]); !ok {
		return res, false
	}
	if res.Basin, ok = normText(row[1]); !ok {
		return res, false
	}
	if res.SectionName, ok = normText(row[2]); !ok {
		return res, false
	}
	key := record.SiteKey(res.Location, res.Basin, res.SectionName)
	res.ID = gnuuid.New(key).String()
	return res, true
}

func normText(raw string) (string, bool) {
	val, ok := record.Normalize(raw)
	if !ok || val == record.NullToken {
		return "", false
	}
	return val, true
}

func (b *buildio) openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Cannot open csv file", "error", err, "path", path)
		return nil, nil, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r, f, nil
}
