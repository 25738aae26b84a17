// Package ingestio implements the offline batch ingestor. It walks the
// four-level directory tree province/basin/section/year-month, normalizes
// every CSV row it finds, and writes one combined table.
package ingestio

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnsys"

	"github.com/oceandata/hydromon/internal/ent/ingest"
	"github.com/oceandata/hydromon/pkg/config"
)

type ingestio struct {
	cfg config.Config
}

// New returns a new instance of Ingestor.
func New(cfg config.Config) (ingest.Ingestor, error) {
	res := ingestio{cfg: cfg}

	err := gnsys.MakeDir(cfg.ProcessedDir)
	if err != nil {
		slog.Error("Cannot create output directory", "error", err,
			"dir", cfg.ProcessedDir)
		return nil, err
	}

	return &res, nil
}

// fileEntry is one discovered CSV file together with its directory context.
type fileEntry struct {
	province    string
	basin       string
	sectionName string
	yearMonth   string
	path        string
}

// Ingest walks the observation tree and writes the combined table. The
// traversal order is the sorted directory order, so re-running over
// unchanged input produces byte-identical output.
func (ing *ingestio) Ingest() (ingest.Report, error) {
	var rep ingest.Report

	slog.Info("Walking the observation tree", "dir", ing.cfg.DataDir)
	entries, err := ing.sourceFiles()
	if err != nil {
		slog.Error("Cannot walk data directory", "error", err,
			"dir", ing.cfg.DataDir)
		return rep, err
	}

	out, err := newCombinedWriter(ing.cfg.CombinedFile)
	if err != nil {
		return rep, err
	}

	for _, e := range entries {
		res := ing.processFile(e, out)
		if res.Err != nil {
			slog.Error("Cannot process file", "error", res.Err,
				"path", e.path)
			rep.Failed++
		}
		rep.Records += res.Records
		rep.Files = append(rep.Files, res)
	}

	if err = out.close(); err != nil {
		slog.Error("Cannot finish combined table", "error", err)
		return rep, err
	}

	slog.Info("Combined table is created",
		"path", ing.cfg.CombinedFile,
		"files", len(rep.Files),
		"records", humanize.Comma(int64(rep.Records)),
	)
	return rep, nil
}

// sourceFiles iterates province, basin, section and year-month directories
// and collects every CSV file. It is side-effect-free; the write stage
// happens later.
func (ing *ingestio) sourceFiles() ([]fileEntry, error) {
	var res []fileEntry

	provinces, err := subDirs(ing.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	for _, province := range provinces {
		basins, err := subDirs(filepath.Join(ing.cfg.DataDir, province))
		if err != nil {
			return nil, err
		}
		for _, basin := range basins {
			sections, err := subDirs(
				filepath.Join(ing.cfg.DataDir, province, basin))
			if err != nil {
				return nil, err
			}
			for _, section := range sections {
				sectionDir := filepath.Join(
					ing.cfg.DataDir, province, basin, section)
				yms, err := subDirs(sectionDir)
				if err != nil {
					return nil, err
				}
				for _, ym := range yms {
					files, err := csvFiles(filepath.Join(sectionDir, ym))
					if err != nil {
						return nil, err
					}
					for _, f := range files {
						res = append(res, fileEntry{
							province:    province,
							basin:       basin,
							sectionName: section,
							yearMonth:   ym,
							path:        filepath.Join(sectionDir, ym, f),
						})
					}
				}
			}
		}
	}
	return res, nil
}

func subDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() {
			res = append(res, e.Name())
		}
	}
	return res, nil
}

func csvFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			res = append(res, e.Name())
		}
	}
	return res, nil
}
