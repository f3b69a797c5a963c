package researchimport

// EntityStats is reported per reconciled entity kind.
type EntityStats struct {
	TotalFound int `json:"total_found"`
	Existing   int `json:"existing"`
	Imported   int `json:"imported"`
}

// LinkStats counts association tuples. TotalProcessed includes in-file
// duplicates; Existing counts distinct tuples already persisted.
type LinkStats struct {
	TotalProcessed int `json:"total_processed"`
	Existing       int `json:"existing"`
	Imported       int `json:"imported"`
}

type Stats struct {
	Proteins     EntityStats `json:"proteins"`
	Compounds    EntityStats `json:"compounds"`
	Organisms    EntityStats `json:"organisms"`
	ResearchData LinkStats   `json:"research_data"`
}

// Result is the per-file verdict returned to callers.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Stats   *Stats `json:"stats,omitempty"`
}

// Diagnostics counts absorbed problems. They are logged and audited, never
// part of Result.
type Diagnostics struct {
	Rows                  int `json:"rows"`
	BlankNames            int `json:"blank_names"`
	RowsMissingEntity     int `json:"rows_missing_entity"`
	UnparseableStages     int `json:"unparseable_stages"`
	UnknownStages         int `json:"unknown_stages"`
	UnresolvedOrganisms   int `json:"unresolved_organisms"`
	DuplicateTuples       int `json:"duplicate_tuples"`
	CompoundsWithoutIUPAC int `json:"compounds_without_iupac"`
}
