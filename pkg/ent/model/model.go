package model

import (
	"time"
)

// User is an account that can log into the API.
type User struct {
	ID uint `gorm:"primary_key" json:"id"`

	// Username is unique across all accounts.
	Username string `gorm:"type:varchar(100);unique_index;not null" json:"username"`

	// PasswordHash is a bcrypt hash, never the password itself.
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	// Role is either "admin" or "user". The store must always keep at
	// least one admin once one exists.
	Role string `gorm:"type:varchar(20);not null" json:"role"`
}

// Site is a monitoring section where observations are taken. Its ID is a
// UUID v5 derived from "location|basin|section_name", so rebuilding the
// database produces the same IDs.
type Site struct {
	ID          string `gorm:"type:uuid;primary_key;auto_increment:false" json:"id"`
	Location    string `gorm:"type:varchar(100);not null" json:"location"`
	Basin       string `gorm:"type:varchar(100);not null" json:"basin"`
	SectionName string `gorm:"type:varchar(100);not null" json:"section_name"`
}

// HydroData is one normalized water-quality observation. Numeric fields are
// pointers: a missing or sentinel source value is stored as NULL, never as
// an empty string or placeholder token.
type HydroData struct {
	ID uint `gorm:"primary_key" json:"id"`

	// Location is the province of the monitoring section.
	Location    string `gorm:"type:varchar(100);not null;index:hydro_location" json:"location"`
	Basin       string `gorm:"type:varchar(100);not null;index:hydro_basin" json:"basin"`
	SectionName string `gorm:"type:varchar(100);not null" json:"section_name"`

	// SiteID links the observation to its monitoring section.
	SiteID string `gorm:"type:uuid;index:hydro_site" json:"site_id"`

	// Date is the calendar day of the observation.
	Date time.Time `gorm:"type:date;not null" json:"date"`

	// Category is the water quality class (Ⅰ-Ⅴ or worse).
	Category *string `gorm:"type:varchar(20)" json:"category"`

	WaterTemperature  *float64 `json:"water_temperature"`
	PH                *float64 `gorm:"column:p_h" json:"pH"`
	DissolvedOxygen   *float64 `json:"dissolved_oxygen"`
	Conductivity      *float64 `json:"conductivity"`
	Turbidity         *float64 `json:"turbidity"`
	PermanganateIndex *float64 `json:"permanganate_index"`
	AmmoniaNitrogen   *float64 `json:"ammonia_nitrogen"`
	TotalPhosphorus   *float64 `json:"total_phosphorus"`
	TotalNitrogen     *float64 `json:"total_nitrogen"`
	Chlorophyll       *float64 `json:"chlorophyll"`
	AlgaeDensity      *float64 `json:"algae_density"`

	SiteCondition *string `gorm:"type:varchar(100)" json:"site_condition"`
}

// TableName keeps the historical table name instead of gorm's default
// pluralization.
func (HydroData) TableName() string {
	return "hydro_data"
}

// Fish is one fish measurement. All measures are required by the source
// dataset, so none of the fields are nullable.
type Fish struct {
	ID      uint    `gorm:"primary_key" json:"id"`
	Species string  `gorm:"type:varchar(100);not null" json:"species"`
	Weight  float64 `gorm:"not null" json:"weight"`
	Length1 float64 `gorm:"not null" json:"length1"`
	Length2 float64 `gorm:"not null" json:"length2"`
	Length3 float64 `gorm:"not null" json:"length3"`
	Height  float64 `gorm:"not null" json:"height"`
	Width   float64 `gorm:"not null" json:"width"`
}

// TableName keeps the singular table name used by earlier versions.
func (Fish) TableName() string {
	return "fish"
}

// Model is an interface for the database schema operations.
type Model interface {
	// Migrate creates tables in the database.
	Migrate() error
}
