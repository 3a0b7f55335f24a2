package lookup

// Entry is one row of a reference table (gender, race or disability status).
// The tables are seeded by migration and read-only at runtime; forms use
// them to render their select inputs.
type Entry struct {
	ID    int    `json:"id" db:"id"`
	Label string `json:"label" db:"label"`
}
