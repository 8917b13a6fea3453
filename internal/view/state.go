package view

import "collegeview/internal/domain"

// State is the derived view of the dataset for one (query, sort, window).
type State struct {
	Filtered []domain.Record
	Sorted   []domain.Record
	Visible  []domain.Record
}

// Recompute derives the full view state. Visible is always a prefix of
// Sorted, clamped to its length.
func Recompute(dataset []domain.Record, query string, cfg domain.SortConfig, window int) State {
	filtered := Filter(dataset, query)
	sorted := Sort(filtered, cfg.Field, cfg.Direction)
	return State{
		Filtered: filtered,
		Sorted:   sorted,
		Visible:  Prefix(sorted, window),
	}
}

// Prefix returns the first n records, with n clamped to [0, len(records)].
// The result shares storage with records but cannot be appended into it.
func Prefix(records []domain.Record, n int) []domain.Record {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n:n]
}
