package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeview/internal/domain"
)

func rec(id, name string) domain.Record {
	return domain.Record{ID: id, College: domain.Profile{Name: name}}
}

func ids(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func sampleDataset(n int) []domain.Record {
	names := []string{"IIT Madras", "IIT Delhi", "NIT Trichy", "BITS Pilani", "Anna University"}
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = rec(fmt.Sprintf("r%02d", i), fmt.Sprintf("%s %d", names[i%len(names)], i))
	}
	return out
}

func TestFilter_EmptyQueryKeepsOrder(t *testing.T) {
	data := sampleDataset(12)
	got := Filter(data, "")
	assert.Equal(t, ids(data), ids(got))

	got[0].ID = "changed"
	assert.Equal(t, "r00", data[0].ID, "filter must not share storage with the dataset")
}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	data := []domain.Record{
		rec("1", "IIT Madras"),
		rec("2", "Indian Institute of Science"),
		rec("3", "iit bombay"),
		rec("4", "École Polytechnique"),
	}
	assert.Equal(t, []string{"1", "3"}, ids(Filter(data, "iIt")))
	assert.Equal(t, []string{"4"}, ids(Filter(data, "ÉCOLE")))
	assert.Empty(t, Filter(data, "oxford"))
}

func TestFilter_MissingNameNeverMatches(t *testing.T) {
	data := []domain.Record{rec("1", ""), rec("2", "NIT Warangal")}
	assert.Equal(t, []string{"2"}, ids(Filter(data, "n")))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(data, "")))
}

func TestFilter_SoundAndComplete(t *testing.T) {
	data := sampleDataset(25)
	for _, q := range []string{"iit", "DELHI", "1", "pilani 8", "zzz", " "} {
		got := Filter(data, q)
		kept := make(map[string]bool, len(got))
		for _, r := range got {
			kept[r.ID] = true
			assert.Contains(t, strings.ToLower(r.College.Name), strings.ToLower(q))
		}
		for _, r := range data {
			if !kept[r.ID] {
				assert.NotContains(t, strings.ToLower(r.College.Name), strings.ToLower(q))
			}
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	data := sampleDataset(25)
	for _, q := range []string{"", "iit", "NIT", "2"} {
		once := Filter(data, q)
		assert.Equal(t, once, Filter(once, q), "query %q", q)
	}
}

func TestSortKey(t *testing.T) {
	tests := []struct {
		field domain.SortField
		raw   string
		want  float64
	}{
		{domain.SortFees, "1,20,000", 120000},
		{domain.SortFees, "2,45,000", 245000},
		{domain.SortFees, "", 0},
		{domain.SortFees, "  ", 0},
		{domain.SortFees, "N/A", 0},
		{domain.SortFees, "12abc", 0},
		{domain.SortFees, " 350 ", 350},
		{domain.SortRating, "4.5", 4},
		{domain.SortRating, "7", 7},
		{domain.SortRating, "-3", -3},
		{domain.SortReviewsScore, "8.6", 8.6},
		{domain.SortReviewsScore, "1,234.5", 0},
		{domain.SortReviewsScore, "", 0},
		{domain.SortReviewsScore, "NaN", 0},
		{domain.SortReviewsScore, "Inf", 0},
	}

	for _, tt := range tests {
		r := domain.Record{}
		switch tt.field {
		case domain.SortFees:
			r.Fees = tt.raw
		case domain.SortRating:
			r.Rating = tt.raw
		case domain.SortReviewsScore:
			r.ReviewsScore = tt.raw
		}
		assert.Equal(t, tt.want, SortKey(r, tt.field), "SortKey(%s=%q)", tt.field, tt.raw)
	}

	assert.Equal(t, 0.0, SortKey(domain.Record{Fees: "100"}, "placement"))
}

func ratings(values ...string) []domain.Record {
	out := make([]domain.Record, len(values))
	for i, v := range values {
		out[i] = domain.Record{ID: fmt.Sprintf("r%d", i), Rating: v}
	}
	return out
}

func TestSort_EmptyRatingSortsAsZero(t *testing.T) {
	data := ratings("3", "1", "", "5", "2")
	got := Sort(data, domain.SortRating, domain.Descending)
	assert.Equal(t, []string{"r3", "r0", "r4", "r1", "r2"}, ids(got))

	got = Sort(data, domain.SortRating, domain.Ascending)
	assert.Equal(t, []string{"r2", "r1", "r4", "r0", "r3"}, ids(got))
}

func TestSort_Stable(t *testing.T) {
	data := ratings("2", "1", "2", "x", "1", "", "2")
	asc := Sort(data, domain.SortRating, domain.Ascending)
	assert.Equal(t, []string{"r3", "r5", "r1", "r4", "r0", "r2", "r6"}, ids(asc))

	desc := Sort(data, domain.SortRating, domain.Descending)
	assert.Equal(t, []string{"r0", "r2", "r6", "r1", "r4", "r3", "r5"}, ids(desc))
}

func TestSort_DescReversesAscWithoutTies(t *testing.T) {
	data := []domain.Record{
		{ID: "a", Fees: "1,50,000"},
		{ID: "b", Fees: "90,000"},
		{ID: "c", Fees: "3,10,000"},
		{ID: "d", Fees: ""},
		{ID: "e", Fees: "2,00,000"},
	}
	asc := Sort(data, domain.SortFees, domain.Ascending)
	desc := Sort(asc, domain.SortFees, domain.Descending)

	reversed := make([]string, len(asc))
	for i, r := range asc {
		reversed[len(asc)-1-i] = r.ID
	}
	assert.Equal(t, []string{"d", "b", "a", "e", "c"}, ids(asc))
	assert.Equal(t, reversed, ids(desc))
}

func TestSort_ReviewsScoreIsDecimal(t *testing.T) {
	data := []domain.Record{
		{ID: "a", ReviewsScore: "8.1"},
		{ID: "b", ReviewsScore: "8.12"},
		{ID: "c", ReviewsScore: "7.9"},
	}
	got := Sort(data, domain.SortReviewsScore, domain.Descending)
	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestSort_UnknownFieldIsIdentity(t *testing.T) {
	data := ratings("3", "1", "2")
	for _, field := range []domain.SortField{"", "unknownField", "placement"} {
		for _, dir := range []domain.Direction{domain.Ascending, domain.Descending, ""} {
			got := Sort(data, field, dir)
			require.Len(t, got, len(data))
			assert.Equal(t, data, got, "field %q dir %q", field, dir)
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	data := ratings("3", "1", "2")
	before := ids(data)
	_ = Sort(data, domain.SortRating, domain.Ascending)
	assert.Equal(t, before, ids(data))
}

func TestPrefix_Clamps(t *testing.T) {
	data := sampleDataset(5)
	assert.Len(t, Prefix(data, -3), 0)
	assert.Len(t, Prefix(data, 0), 0)
	assert.Len(t, Prefix(data, 3), 3)
	assert.Len(t, Prefix(data, 50), 5)

	p := Prefix(data, 2)
	p = append(p, rec("new", "x"))
	assert.Equal(t, "r02", data[2].ID, "append on a prefix must not overwrite the source")
}

func TestRecompute_FirstWindowInOriginalOrder(t *testing.T) {
	data := sampleDataset(25)
	st := Recompute(data, "", domain.SortConfig{}, 10)

	assert.Len(t, st.Filtered, 25)
	assert.Equal(t, ids(data), ids(st.Sorted))
	assert.Equal(t, ids(data[:10]), ids(st.Visible))
}

func TestRecompute_QueryMatchingThree(t *testing.T) {
	data := sampleDataset(25)
	data[4].College.Name = "Vellore Institute"
	data[11].College.Name = "VIT Vellore"
	data[20].College.Name = "Vellore Medical"

	st := Recompute(data, "vellore", domain.SortConfig{}, 10)
	assert.Equal(t, []string{"r04", "r11", "r20"}, ids(st.Visible))
}

func TestRecompute_VisibleIsPrefixOfSorted(t *testing.T) {
	data := sampleDataset(25)
	for i := range data {
		data[i].Fees = fmt.Sprintf("%d,000", (i*7)%13)
	}
	cfg := domain.SortConfig{Field: domain.SortFees, Direction: domain.Descending}
	for _, w := range []int{-1, 0, 5, 10, 24, 25, 40} {
		st := Recompute(data, "i", cfg, w)
		require.LessOrEqual(t, len(st.Visible), len(st.Sorted))
		assert.Equal(t, st.Sorted[:len(st.Visible)], st.Visible, "window %d", w)
	}
}
