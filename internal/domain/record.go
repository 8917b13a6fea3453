package domain

// Profile is the descriptive part of a college record.
type Profile struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	Logo    string `json:"logo" yaml:"logo"`
	Course  string `json:"course" yaml:"course"`
}

// Record is one row of the listing. Numeric-bearing fields are kept as the
// raw strings the dataset ships with; they may contain thousands separators
// or be empty.
type Record struct {
	ID      string  `json:"id" yaml:"id"`
	College Profile `json:"college" yaml:"college"`

	Fees            string `json:"fees" yaml:"fees"`
	CourseType      string `json:"courseType" yaml:"course_type"`
	FeesDescription string `json:"feesDescription" yaml:"fees_description"`
	Placement       string `json:"placement" yaml:"placement"`
	HighestPackage  string `json:"highestPackage" yaml:"highest_package"`

	Rating       string `json:"rating" yaml:"rating"`
	ReviewsScore string `json:"reviewsScore" yaml:"reviews_score"`
	ReviewsCount string `json:"reviewsCount" yaml:"reviews_count"`

	RankingPosition  string `json:"rankingPosition" yaml:"ranking_position"`
	RankingHighlight string `json:"rankingHighlight" yaml:"ranking_highlight"`
	RankingYear      string `json:"rankingYear" yaml:"ranking_year"`
	RankingLogo      string `json:"rankingLogo" yaml:"ranking_logo"`
}

// SortField names a sortable column.
type SortField string

const (
	SortNone         SortField = ""
	SortFees         SortField = "fees"
	SortRating       SortField = "rating"
	SortReviewsScore SortField = "reviewsScore"
)

// SortFields lists the sort-eligible fields in display order.
var SortFields = []SortField{SortFees, SortRating, SortReviewsScore}

// Eligible reports whether f is one of the sortable fields.
func (f SortField) Eligible() bool {
	switch f {
	case SortFees, SortRating, SortReviewsScore:
		return true
	}
	return false
}

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SortConfig selects the sort field and direction. The zero value means
// "no sort": filter order is preserved.
type SortConfig struct {
	Field     SortField `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Toggle returns the configuration after the user selects field: the same
// field flips its direction, a new field starts ascending.
func (c SortConfig) Toggle(field SortField) SortConfig {
	if c.Field == field && c.Direction == Ascending {
		return SortConfig{Field: field, Direction: Descending}
	}
	return SortConfig{Field: field, Direction: Ascending}
}

// DirectionFor is the direction label shown next to field: the active
// direction when field is selected, ascending otherwise.
func (c SortConfig) DirectionFor(field SortField) Direction {
	if c.Field == field && c.Direction != "" {
		return c.Direction
	}
	return Ascending
}
