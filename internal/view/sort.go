package view

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"collegeview/internal/domain"
)

// integerRe accepts an optional sign, digits and an optional fraction that
// integer parsing drops.
var integerRe = regexp.MustCompile(`^([+-]?\d+)(?:\.\d*)?$`)

// SortKey is the numeric interpretation of field for r. Values that do not
// parse, and fields that are not sortable, yield 0.
func SortKey(r domain.Record, field domain.SortField) float64 {
	switch field {
	case domain.SortFees:
		return parseInteger(r.Fees)
	case domain.SortRating:
		return parseInteger(r.Rating)
	case domain.SortReviewsScore:
		return parseDecimal(r.ReviewsScore)
	}
	return 0
}

// parseInteger strips thousands separators and parses what is left as an
// integer. Missing values count as "0".
func parseInteger(raw string) float64 {
	if strings.TrimSpace(raw) == "" {
		raw = "0"
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	match := integerRe.FindStringSubmatch(cleaned)
	if len(match) < 2 {
		return 0
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0
	}
	return float64(n)
}

func parseDecimal(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Sort returns a copy of records ordered by the numeric value of field.
// Equal keys keep their input order. An empty or unsortable field returns
// the records in their input order.
func Sort(records []domain.Record, field domain.SortField, dir domain.Direction) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	if !field.Eligible() {
		return out
	}

	keys := make([]float64, len(out))
	for i := range out {
		keys[i] = SortKey(out[i], field)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	desc := dir == domain.Descending
	sort.SliceStable(idx, func(a, b int) bool {
		if desc {
			return keys[idx[a]] > keys[idx[b]]
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	sorted := make([]domain.Record, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
