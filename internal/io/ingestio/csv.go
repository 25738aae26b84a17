package ingestio

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/oceandata/hydromon/internal/ent/ingest"
	"github.com/oceandata/hydromon/internal/ent/record"
)

// combinedWriter appends canonical rows to the combined table.
type combinedWriter struct {
	f *os.File
	w *csv.Writer
}

func newCombinedWriter(path string) (*combinedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err = w.Write(record.CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &combinedWriter{f: f, w: w}, nil
}

func (cw *combinedWriter) write(obs record.Observation) error {
	return cw.w.Write(obs.CSVRow())
}

func (cw *combinedWriter) close() error {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		cw.f.Close()
		return err
	}
	if err := cw.f.Sync(); err != nil {
		cw.f.Close()
		return err
	}
	return cw.f.Close()
}

// processFile normalizes one source file. The first line is a header and is
// discarded; rows with wrong arity are silently skipped; a read failure
// stops the file but keeps rows already written.
func (ing *ingestio) processFile(
	e fileEntry,
	out *combinedWriter,
) ingest.FileResult {
	res := ingest.FileResult{
		Path:        e.path,
		Province:    e.province,
		Basin:       e.basin,
		SectionName: e.sectionName,
		YearMonth:   e.yearMonth,
	}

	f, err := os.Open(e.path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	r := csv.NewReader(f)
	// arity is checked by the record parser, not the reader
	r.FieldsPerRecord = -1

	// skip header
	if _, err = r.Read(); err != nil {
		res.Err = err
		return res
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Err = err
			return res
		}
		obs, ok := record.ParseRow(row, e.yearMonth)
		if !ok {
			continue
		}
		if err = out.write(obs); err != nil {
			res.Err = err
			return res
		}
		res.Records++
	}
	return res
}
