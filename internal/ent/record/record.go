// Package record converts raw water-quality CSV rows into canonical,
// typed observations. Missing or sentinel source values become nils, never
// empty strings or placeholder tokens.
package record

import (
	"strconv"
	"time"
)

// List of fields of a raw observation row. The value corresponds to the
// position of the field in a row.
const (
	provinceF     = 0
	basinF        = 1
	sectionF      = 2
	timeF         = 3
	categoryF     = 4
	waterTempF    = 5
	phF           = 6
	oxygenF       = 7
	conductivityF = 8
	turbidityF    = 9
	permanganateF = 10
	ammoniaF      = 11
	phosphorusF   = 12
	nitrogenF     = 13
	chlorophyllF  = 14
	algaeF        = 15
	conditionF    = 16

	// FieldsNum is the fixed arity of an observation row. Rows with any
	// other number of fields are discarded.
	FieldsNum = 17
)

// NullToken is the literal encoding of a missing value in the combined
// table.
const NullToken = "null"

// TimeLayout is the timestamp format of the combined table.
const TimeLayout = "2006-01-02 15:04:05"

// CSVHeader is the header of the combined water-quality table.
var CSVHeader = []string{
	"province", "basin", "section_name", "observed_at",
	"water_quality_category", "water_temperature", "pH",
	"dissolved_oxygen", "conductivity", "turbidity",
	"permanganate_index", "ammonia_nitrogen", "total_phosphorus",
	"total_nitrogen", "chlorophyll", "algae_density", "site_condition",
}

// Observation is the canonical form of one water-quality reading.
type Observation struct {
	Province    string
	Basin       string
	SectionName string

	// ObservedAt is nil when the source timestamp could not be
	// reconstructed. Such rows are kept, not dropped.
	ObservedAt *time.Time

	Category *string

	WaterTemperature  *float64
	PH                *float64
	DissolvedOxygen   *float64
	Conductivity      *float64
	Turbidity         *float64
	PermanganateIndex *float64
	AmmoniaNitrogen   *float64
	TotalPhosphorus   *float64
	TotalNitrogen     *float64
	Chlorophyll       *float64
	AlgaeDensity      *float64

	SiteCondition *string
}

// ParseRow converts one raw row into an Observation using the year-month of
// the enclosing directory for timestamp reconstruction. The second return
// value is false when the row does not have exactly FieldsNum fields and
// must be skipped.
func ParseRow(row []string, yearMonth string) (Observation, bool) {
	var res Observation
	if len(row) != FieldsNum {
		return res, false
	}

	res.Province, _ = Normalize(row[provinceF])
	res.Basin, _ = Normalize(row[basinF])
	res.SectionName, _ = Normalize(row[sectionF])

	if ts, err := ReconstructTime(row[timeF], yearMonth); err == nil {
		res.ObservedAt = &ts
	}

	res.Category = normalizePtr(row[categoryF])

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

	res.SiteCondition = normalizePtr(row[conditionF])

	return res, true
}

// CSVRow encodes the observation for the combined table. Missing values
// become the literal NullToken, timestamps use TimeLayout, and floats use
// the shortest exact decimal form, so re-encoding the same input is
// byte-identical.
func (o Observation) CSVRow() []string {
	res := make([]string, FieldsNum)
	res[provinceF] = textOrNull(o.Province)
	res[basinF] = textOrNull(o.Basin)
	res[sectionF] = textOrNull(o.SectionName)
	res[timeF] = timeOrNull(o.ObservedAt)
	res[categoryF] = strOrNull(o.Category)
	res[waterTempF] = floatOrNull(o.WaterTemperature)
	res[phF] = floatOrNull(o.PH)
	res[oxygenF] = floatOrNull(o.DissolvedOxygen)
	res[conductivityF] = floatOrNull(o.Conductivity)
	res[turbidityF] = floatOrNull(o.Turbidity)
	res[permanganateF] = floatOrNull(o.PermanganateIndex)
	res[ammoniaF] = floatOrNull(o.AmmoniaNitrogen)
	res[phosphorusF] = floatOrNull(o.TotalPhosphorus)
	res[nitrogenF] = floatOrNull(o.TotalNitrogen)
	res[chlorophyllF] = floatOrNull(o.Chlorophyll)
	res[algaeF] = floatOrNull(o.AlgaeDensity)
	res[conditionF] = strOrNull(o.SiteCondition)
	return res
}

func textOrNull(s string) string {
	if s == "" {
		return NullToken
	}
	return s
}

func strOrNull(s *string) string {
	if s == nil {
		return NullToken
	}
	return *s
}

func floatOrNull(f *float64) string {
	if f == nil {
		return NullToken
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func timeOrNull(t *time.Time) string {
	if t == nil {
		return NullToken
	}
	return t.Format(TimeLayout)
}
