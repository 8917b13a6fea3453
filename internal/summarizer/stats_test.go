package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"collegeview/internal/domain"
)

func rec(name, address, fees, rating string) domain.Record {
	return domain.Record{College: domain.Profile{Name: name, Address: address}, Fees: fees, Rating: rating}
}

func TestSummarize(t *testing.T) {
	records := []domain.Record{
		rec("A", "Chennai, Tamil Nadu", "1,45,000", "9"),
		rec("B", "Vellore, Tamil Nadu", "2,11,000", "8"),
		rec("C", "Pune, Maharashtra", "", ""),
		rec("D", "Kanpur, Uttar Pradesh", "80,000", "7.5"),
		rec("E", "", "abc", "10"),
	}

	s := Summarize(records, 2)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3, s.Priced)
	assert.Equal(t, int64(80000), s.MinFees)
	assert.Equal(t, int64(211000), s.MaxFees)
	assert.Equal(t, 4, s.Rated)
	assert.InDelta(t, 8.5, s.MeanRating, 1e-9)
	assert.Equal(t, []Location{{"Tamil Nadu", 2}, {"Maharashtra", 1}}, s.Top)

	assert.Equal(t,
		"5 colleges, fees 80,000-211,000 (3 listed), mean rating 8.5 (4 rated), most listed: Tamil Nadu (2), Maharashtra (1)",
		s.String())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 3)
	assert.Equal(t, Summary{}, s)
	assert.Equal(t, "0 colleges", s.String())
}

func TestSummarize_Single(t *testing.T) {
	s := Summarize([]domain.Record{rec("Solo", "Goa", "", "")}, 0)
	assert.Empty(t, s.Top)
	assert.Equal(t, "1 college", s.String())
}
