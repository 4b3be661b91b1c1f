package indexer

// Review is one professor record in a reviews file.
type Review struct {
	Professor string  `json:"professor"`
	Subject   string  `json:"subject"`
	Stars     float64 `json:"stars"`
	Review    string  `json:"review"`
}

// reviewsFile is the top-level shape of a reviews file.
type reviewsFile struct {
	Reviews []Review `json:"reviews"`
}

// Stats summarizes one indexing run.
type Stats struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Pruned  int `json:"pruned"`
}

// Options controls an indexing run.
type Options struct {
	// Prune removes catalog entries and points for professors missing from the input.
	Prune bool
	// Force re-embeds every review, ignoring catalog hashes.
	Force bool
}
