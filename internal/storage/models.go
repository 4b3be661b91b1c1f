package storage

import "time"

// ProfessorRecord is the catalog entry for one indexed professor.
type ProfessorRecord struct {
	Namespace string
	Name      string
	PointID   string  // Qdrant point ID
	Subject   string
	Stars     float64
	Hash      string // SHA256 hex string of the indexed record
	UpdatedAt time.Time
}

// IngestRun summarizes one completed ingest run.
type IngestRun struct {
	ID         int64
	Namespace  string
	Source     string // Path of the loaded reviews file
	Total      int
	Indexed    int
	Skipped    int
	Pruned     int
	FinishedAt time.Time
}
