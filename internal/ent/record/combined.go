package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oceandata/hydromon/pkg/ent/model"
)

// List of fields of a fish measurement row.
const (
	fishSpeciesF = 0
	fishWeightF  = 1
	fishLength1F = 2
	fishLength2F = 3
	fishLength3F = 4
	fishHeightF  = 5
	fishWidthF   = 6

	// FishFieldsNum is the fixed arity of a fish measurement row.
	FishFieldsNum = 7
)

// FishCSVHeader is the header of the fish measurements table.
var FishCSVHeader = []string{
	"Species", "Weight(g)", "Length1(cm)", "Length2(cm)", "Length3(cm)",
	"Height(cm)", "Width(cm)",
}

// ParseCombined converts one row of the combined water-quality table into a
// database record. Unlike the raw-row parser it is strict: the import
// contract surfaces the first bad row to the caller, so errors name the
// failing field instead of degrading to nil.
func ParseCombined(row []string) (model.HydroData, error) {
	var res model.HydroData
	if len(row) != FieldsNum {
		return res, fmt.Errorf("wrong number of fields: %d instead of %d",
			len(row), FieldsNum)
	}

	var ok bool
	if res.Location, ok = Normalize(row[provinceF]); !ok || res.Location == NullToken {
		return res, fmt.Errorf("missing province")
	}
	if res.Basin, ok = Normalize(row[basinF]); !ok || res.Basin == NullToken {
		return res, fmt.Errorf("missing basin")
	}
	if res.SectionName, ok = Normalize(row[sectionF]); !ok || res.SectionName == NullToken {
		return res, fmt.Errorf("missing section name")
	}

	date, err := parseDate(row[timeF])
	if err != nil {
		return res, err
	}
	res.Date = date

	res.Category = normalizeNonNull(row[categoryF])

	res.WaterTemperature = NormalizeFloat(row[waterTempF])
	res.PH = NormalizeFloat(row[phF])
	res.DissolvedOxygen = NormalizeFloat(row[oxygenF])
	res.Conductivity = NormalizeFloat(row[conductivityF])
	res.Turbidity = NormalizeFloat(row[turbidityF])
	res.PermanganateIndex = NormalizeFloat(row[permanganateF])
	res.AmmoniaNitrogen = NormalizeFloat(row[ammoniaF])
	res.TotalPhosphorus = NormalizeFloat(row[phosphorusF])
	res.TotalNitrogen = NormalizeFloat(row[nitrogenF])
	res.Chlorophyll = NormalizeFloat(row[chlorophyllF])
	res.AlgaeDensity = NormalizeFloat(row[algaeF])

	res.SiteCondition = normalizeNonNull(row[conditionF])

	return res, nil
}

// SiteKey is the natural key of a monitoring section; it seeds the UUID v5
// site IDs and the key-value store of the build.
func SiteKey(location, basin, sectionName string) string {
	return location + "|" + basin + "|" + sectionName
}

// ParseFishRow converts one row of a fish measurements CSV. All measures
// are required.
func ParseFishRow(row []string) (model.Fish, error) {
	var res model.Fish
	if len(row) != FishFieldsNum {
		return res, fmt.Errorf("wrong number of fields: %d instead of %d",
			len(row), FishFieldsNum)
	}

	species, ok := Normalize(row[fishSpeciesF])
	if !ok {
		return res, fmt.Errorf("missing species")
	}
	res.Species = species

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"weight", row[fishWeightF], &res.Weight},
		{"length1", row[fishLength1F], &res.Length1},
		{"length2", row[fishLength2F], &res.Length2},
		{"length3", row[fishLength3F], &res.Length3},
		{"height", row[fishHeightF], &res.Height},
		{"width", row[fishWidthF], &res.Width},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return res, fmt.Errorf("bad %s %q", f.name, f.raw)
		}
		*f.dst = v
	}

	return res, nil
}

// parseDate extracts the calendar day from a combined-table timestamp
// ("YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD"). The date column of hydro_data is
// not nullable, so a row whose timestamp degraded to null during ingestion
// cannot be imported.
func parseDate(raw string) (time.Time, error) {
	tokens := strings.Fields(strings.TrimSpace(raw))
	if len(tokens) == 0 {
		return time.Time{}, fmt.Errorf("missing date")
	}
	date, err := time.Parse("2006-01-02", tokens[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", tokens[0])
	}
	return date, nil
}

// normalizeNonNull is like normalizePtr but also treats the literal
// NullToken of the combined table as missing.
func normalizeNonNull(raw string) *string {
	val, ok := Normalize(raw)
	if !ok || val == NullToken {
		return nil
	}
	return &val
}
