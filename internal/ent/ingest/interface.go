package ingest

// Ingestor walks the raw observation tree and produces the combined
// water-quality table.
type Ingestor interface {
	// Ingest discovers and normalizes every CSV file under the data
	// directory and writes the combined table. A single file's failure
	// is recorded in the report and does not abort the traversal.
	Ingest() (Report, error)
}

// FileResult is the outcome of processing one source file.
type FileResult struct {
	// Path of the source CSV file.
	Path string

	// Province, Basin and SectionName come from the directory names
	// above the file.
	Province    string
	Basin       string
	SectionName string

	// YearMonth is the "YYYY-MM" directory that supplies the timestamp
	// context for every row of the file.
	YearMonth string

	// Records is the number of rows kept from the file.
	Records int

	// Err is set when the file could not be read; its rows that were
	// already written stay in the output.
	Err error
}

// Report aggregates per-file outcomes of one traversal.
type Report struct {
	// Files holds one entry per discovered CSV file in traversal order.
	Files []FileResult

	// Records is the total number of observations written.
	Records int

	// Failed is the number of files that could not be processed.
	Failed int
}
