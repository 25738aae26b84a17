package apiio

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"

	"github.com/gnames/gnuuid"
	"github.com/oceandata/hydromon/internal/ent/record"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

const maxUploadSize = 32 << 20

// uploadReader opens the uploaded CSV file, skips its header row and
// returns a reader positioned at the first data row.
func uploadReader(
	w http.ResponseWriter, r *http.Request,
) (*csv.Reader, io.Closer, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file provided")
		return nil, nil, false
	}

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1

	// header
	if _, err = cr.Read(); err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		writeMessage(w, http.StatusBadRequest, "Cannot read CSV file")
		return nil, nil, false
	}
	return cr, file, true
}

func (s *Server) handleImportHydroData(
	w http.ResponseWriter, r *http.Request,
) {
	cr, file, ok := uploadReader(w, r)
	if !ok {
		return
	}
	defer file.Close()

	var total, imported int
	var chunk []model.HydroData
	var rawChunk [][]string

	flush := func() bool {
		if len(chunk) == 0 {
			return true
		}
		if err := s.store.InsertHydroData(chunk); err != nil {
			s.metrics.ImportErrors.Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":        "Import failed",
				"error":          err.Error(),
				"row":            total - len(chunk) + 1,
				"row_data":       rawChunk[0],
				"imported_count": imported,
			})
			return false
		}
		imported += len(chunk)
		s.metrics.RowsImported.
			WithLabelValues("hydrodata").Add(float64(len(chunk)))
		chunk = chunk[:0]
		rawChunk = rawChunk[:0]
		return true
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.metrics.ImportErrors.Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":        "Import failed",
				"error":          err.Error(),
				"row":            total + 1,
				"row_data":       row,
				"imported_count": imported,
			})
			return
		}
		total++

		hd, err := record.ParseCombined(row)
		if err != nil {
			s.metrics.ImportErrors.Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":        "Import failed",
				"error":          err.Error(),
				"row":            total,
				"row_data":       row,
				"imported_count": imported,
			})
			return
		}
		key := record.SiteKey(hd.Location, hd.Basin, hd.SectionName)
		hd.SiteID = gnuuid.New(key).String()

		chunk = append(chunk, hd)
		rawChunk = append(rawChunk, row)
		if len(chunk) >= s.chunkSize && !flush() {
			return
		}
	}
	if !flush() {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Import successful",
		"imported_count": imported,
		"total_rows":     total,
	})
}

func (s *Server) handleImportFish(w http.ResponseWriter, r *http.Request) {
	cr, file, ok := uploadReader(w, r)
	if !ok {
		return
	}
	defer file.Close()

	var total, imported int
	var chunk []model.Fish
	var rawChunk [][]string

	flush := func() bool {
		if len(chunk) == 0 {
			return true
		}
		if err := s.store.InsertFish(chunk); err != nil {
			s.metrics.ImportErrors.Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":        "Import failed",
				"error":          err.Error(),
				"row":            total - len(chunk) + 1,
				"row_data":       rawChunk[0],
				"imported_count": imported,
			})
			return false
		}
		imported += len(chunk)
		s.metrics.RowsImported.
			WithLabelValues("fish").Add(float64(len(chunk)))
		chunk = chunk[:0]
		rawChunk = rawChunk[:0]
		return true
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.metrics.ImportErrors.Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":        "Import failed",
				"error":          err.Error(),
				"row":            total + 1,
				"row_data":       row,
				"imported_count": imported,
			})
			return
		}
		total++

		fish, err := record.ParseFishRow(row)
		if err != nil {
			s.metrics.ImportErrors.Inc()
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message":        "Import failed",
				"error":          err.Error(),
				"row":            total,
				"row_data":       row,
				"imported_count": imported,
			})
			return
		}

		chunk = append(chunk, fish)
		rawChunk = append(rawChunk, row)
		if len(chunk) >= s.chunkSize && !flush() {
			return
		}
	}
	if !flush() {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Import successful",
		"imported_count": imported,
		"total_rows":     total,
	})
}
