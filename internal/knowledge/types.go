package knowledge

// Record is one parsed protocol chunk as loaded from the ingest JSON.
type Record struct {
	SourceFile   string `json:"source_file"`
	FileNumber   int    `json:"file_number"`
	ChunkNumber  int    `json:"chunk_number"`
	ChunkText    string `json:"chunk_text"`
	ChunkSummary string `json:"chunk_summary"`
	Category     string `json:"category"`

	ApplicablePatterns []string `json:"applicable_patterns"`
	TemperamentMatch   []string `json:"temperament_match"`
	StateCreated       []string `json:"state_created"`

	TimeCommitmentMin int    `json:"time_commitment_min"`
	TimeCommitmentMax int    `json:"time_commitment_max"`
	DifficultyLevel   string `json:"difficulty_level"`
	Emergency         bool   `json:"emergency"`

	Embedding []float32 `json:"embedding,omitempty"`
}

// RecordError describes one record that failed validation.
type RecordError struct {
	Index       int    `json:"index"`
	SourceFile  string `json:"source_file"`
	ChunkNumber int    `json:"chunk_number"`
	Reason      string `json:"reason"`
}

// IngestReport summarizes one ingest run.
type IngestReport struct {
	Total    int           `json:"total"`
	Inserted int           `json:"inserted"`
	Indexed  int           `json:"indexed"`
	Failed   int           `json:"failed"`
	Batches  int           `json:"batches"`
	DryRun   bool          `json:"dry_run"`
	Failures []RecordError `json:"failures,omitempty"`
}

// SearchFilter narrows a protocol search.
type SearchFilter struct {
	Pattern       string `json:"pattern,omitempty"`
	Temperament   string `json:"temperament,omitempty"`
	Category      string `json:"category,omitempty"`
	MaxTimeCommit int    `json:"max_time_commit,omitempty"`
	EmergencyOnly bool   `json:"emergency_only,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// SearchResult is one matched protocol chunk.
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	SourceFile string  `json:"source_file"`
	Text       string  `json:"text"`
	Summary    string  `json:"summary,omitempty"`
	Category   string  `json:"category,omitempty"`
	Score      float64 `json:"score"`
	// Source is "semantic" or "text" when the text fallback served the
	// query.
	Source string `json:"source"`
}
