package apiio

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/oceandata/hydromon/internal/ent/store"
)

const dateLayout = "2006-01-02"

func (s *Server) handleHydroData(w http.ResponseWriter, r *http.Request) {
	var f store.HydroFilter
	q := r.URL.Query()

	if v := q.Get("id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid id")
			return
		}
		uid := uint(id)
		f.ID = &uid
	}
	f.Location = q.Get("location")
	f.Basin = q.Get("basin")
	f.SectionName = q.Get("section_name")
	if v := q.Get("date"); v != "" {
		date, err := time.Parse(dateLayout, v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest,
				"Invalid date, use YYYY-MM-DD")
			return
		}
		f.Date = &date
	}

	data, err := s.store.HydroData(f)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  data,
		"count": len(data),
	})
}

func (s *Server) handleFish(w http.ResponseWriter, r *http.Request) {
	fish, err := s.store.Fish()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fish":  fish,
		"count": len(fish),
	})
}

// handleMonitoringData returns simulated live sensor readings. Real
// telemetry ingestion is out of scope, dashboards poll this endpoint
// for demonstration data.
func (s *Server) handleMonitoringData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"water_temperature": round2(15 + rand.Float64()*10),
		"ph":                round2(6.5 + rand.Float64()*2),
		"dissolved_oxygen":  round2(5 + rand.Float64()*5),
		"conductivity":      round2(200 + rand.Float64()*300),
		"turbidity":         round2(1 + rand.Float64()*20),
	})
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
