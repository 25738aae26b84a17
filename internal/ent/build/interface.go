package build

// Builder is the interface that wraps the Build method.
type Builder interface {
	// Build resets the database and loads the combined water-quality
	// table and the fish measurements into PostgreSQL.
	Build() error
}
