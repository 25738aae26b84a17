package config

import (
	"os"
	"path/filepath"
)

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// DataDir is the root of the raw observation tree:
	// {province}/{basin}/{section}/{YYYY-MM}/*.csv.
	DataDir string

	// ProcessedDir is a directory for the combined output table.
	ProcessedDir string

	// CombinedFile is the path of the combined water-quality CSV.
	CombinedFile string

	// FishFile is the path of the fish measurements CSV.
	FishFile string

	// SitesKVDir is a directory for the key-value store that maps
	// monitoring sections to their IDs during a database build.
	SitesKVDir string

	// JobsNum is a number of concurrent goroutines for the build.
	JobsNum int

	// BatchSize is a number of records to be saved in one database write.
	BatchSize int

	// ChunkSize is a number of records per commit for HTTP bulk imports.
	ChunkSize int

	// PgHost is a host name for PostgreSQL.
	PgHost string

	// PgPort is a port for PostgreSQL.
	PgPort int

	// PgUser is a user name for PostgreSQL.
	PgUser string

	// PgPass is a password for PostgreSQL.
	PgPass string

	// PgDB is a database name for PostgreSQL.
	PgDB string

	// HTTPAddr is the listen address of the API server.
	HTTPAddr string
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptDataDir sets the root directory of the raw observation tree.
func OptDataDir(d string) Option {
	return func(cfg *Config) {
		cfg.DataDir = d
	}
}

// OptProcessedDir sets the directory for the combined output table.
func OptProcessedDir(d string) Option {
	return func(cfg *Config) {
		cfg.ProcessedDir = d
		cfg.CombinedFile = filepath.Join(d, "combined_water_quality.csv")
	}
}

// OptFishFile sets the path of the fish measurements CSV.
func OptFishFile(f string) Option {
	return func(cfg *Config) {
		cfg.FishFile = f
	}
}

// OptJobsNum sets parallelism number for concurrent goroutines.
func OptJobsNum(j int) Option {
	return func(cfg *Config) {
		cfg.JobsNum = j
	}
}

// OptBatchSize sets the number of records per database write.
func OptBatchSize(b int) Option {
	return func(cfg *Config) {
		cfg.BatchSize = b
	}
}

// OptPgHost sets host name for PostgreSQL
func OptPgHost(h string) Option {
	return func(cfg *Config) {
		cfg.PgHost = h
	}
}

// OptPgPort sets port for PostgreSQL
func OptPgPort(p int) Option {
	return func(cfg *Config) {
		cfg.PgPort = p
	}
}

// OptPgUser sets user for PostgreSQL
func OptPgUser(u string) Option {
	return func(cfg *Config) {
		cfg.PgUser = u
	}
}

// OptPgPass sets password for PostgreSQL
func OptPgPass(p string) Option {
	return func(cfg *Config) {
		cfg.PgPass = p
	}
}

// OptPgDB sets database name for PostgreSQL
func OptPgDB(d string) Option {
	return func(cfg *Config) {
		cfg.PgDB = d
	}
}

// OptHTTPAddr sets the listen address of the API server.
func OptHTTPAddr(a string) Option {
	return func(cfg *Config) {
		cfg.HTTPAddr = a
	}
}

func New(opts ...Option) Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	cacheDir = filepath.Join(cacheDir, "hydromon")

	res := Config{
		DataDir:      filepath.Join("data", "water_quality_by_name"),
		ProcessedDir: filepath.Join("data", "processed"),
		CombinedFile: filepath.Join("data", "processed", "combined_water_quality.csv"),
		FishFile:     filepath.Join("data", "Fish.csv"),
		SitesKVDir:   filepath.Join(cacheDir, "sites"),
		JobsNum:      4,
		BatchSize:    10_000,
		ChunkSize:    100,
		PgHost:       "0.0.0.0",
		PgPort:       5432,
		PgUser:       "postgres",
		PgPass:       "postgres",
		PgDB:         "hydromon",
		HTTPAddr:     ":8080",
	}

	for _, opt := range opts {
		opt(&res)
	}

	return res
}
