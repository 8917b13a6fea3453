package summarizer

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"collegeview/internal/domain"
	"collegeview/internal/view"
)

// Location is a region and how many records list it.
type Location struct {
	Name  string
	Count int
}

// Summary describes a dataset in aggregate.
type Summary struct {
	Count      int
	Priced     int
	MinFees    int64
	MaxFees    int64
	Rated      int
	MeanRating float64
	Top        []Location
}

// Summarize aggregates records. Fees and ratings that parse to zero count
// as missing. Top holds at most top regions, taken from the last
// comma-separated part of each address, most frequent first.
func Summarize(records []domain.Record, top int) Summary {
	s := Summary{Count: len(records)}
	var ratingSum float64
	freq := map[string]int{}
	for _, r := range records {
		if fees := int64(view.SortKey(r, domain.SortFees)); fees > 0 {
			if s.Priced == 0 || fees < s.MinFees {
				s.MinFees = fees
			}
			if fees > s.MaxFees {
				s.MaxFees = fees
			}
			s.Priced++
		}
		if rating := view.SortKey(r, domain.SortRating); rating > 0 {
			ratingSum += rating
			s.Rated++
		}
		if region := region(r.College.Address); region != "" {
			freq[region]++
		}
	}
	if s.Rated > 0 {
		s.MeanRating = ratingSum / float64(s.Rated)
	}

	for name, n := range freq {
		s.Top = append(s.Top, Location{Name: name, Count: n})
	}
	sort.Slice(s.Top, func(i, j int) bool {
		if s.Top[i].Count != s.Top[j].Count {
			return s.Top[i].Count > s.Top[j].Count
		}
		return s.Top[i].Name < s.Top[j].Name
	})
	if top < 0 {
		top = 0
	}
	if len(s.Top) > top {
		s.Top = s.Top[:top]
	}
	return s
}

func region(address string) string {
	parts := strings.Split(address, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// String renders the summary as one line, e.g.
// "30 colleges, fees 80,000-405,000 (29 listed), mean rating 8.4 (28 rated), most listed: Tamil Nadu (7)".
func (s Summary) String() string {
	p := message.NewPrinter(language.English)
	var parts []string
	noun := "colleges"
	if s.Count == 1 {
		noun = "college"
	}
	parts = append(parts, p.Sprintf("%d %s", s.Count, noun))
	if s.Priced > 0 {
		parts = append(parts, p.Sprintf("fees %d-%d (%d listed)", s.MinFees, s.MaxFees, s.Priced))
	}
	if s.Rated > 0 {
		parts = append(parts, p.Sprintf("mean rating %.1f (%d rated)", s.MeanRating, s.Rated))
	}
	if len(s.Top) > 0 {
		locs := make([]string, len(s.Top))
		for i, l := range s.Top {
			locs[i] = p.Sprintf("%s (%d)", l.Name, l.Count)
		}
		parts = append(parts, "most listed: "+strings.Join(locs, ", "))
	}
	return strings.Join(parts, ", ")
}
