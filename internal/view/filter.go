// Package view derives the displayed subset of the listing from the full
// dataset. Every function here is pure: inputs are never modified and a
// fresh slice is returned.
package view

import (
	"strings"

	"golang.org/x/text/cases"

	"collegeview/internal/domain"
)

// Filter returns the records whose college name contains query, compared
// under Unicode case folding. An empty query keeps every record.
func Filter(records []domain.Record, query string) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	if query == "" {
		return append(out, records...)
	}
	folder := cases.Fold()
	needle := folder.String(query)
	for _, r := range records {
		name := r.College.Name
		if name == "" {
			continue
		}
		if strings.Contains(folder.String(name), needle) {
			out = append(out, r)
		}
	}
	return out
}
