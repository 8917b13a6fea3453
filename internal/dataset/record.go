package dataset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"collegeview/internal/domain"
)

// idNamespace seeds the name-based UUIDs given to records without an id.
var idNamespace = uuid.MustParse("6f1c7f36-3a52-4c0e-9d1a-4c5b3e8a2b17")

// Columns are the flat column names used by CSV files and SQL tables, in
// the order they are read and written.
var Columns = []string{
	"id", "name", "address", "logo", "course",
	"fees", "course_type", "fees_description", "placement", "highest_package",
	"rating", "reviews_score", "reviews_count",
	"ranking_position", "ranking_highlight", "ranking_year", "ranking_logo",
}

// field returns the record field stored under column, or nil for an
// unknown column.
func field(r *domain.Record, column string) *string {
	switch column {
	case "id":
		return &r.ID
	case "name":
		return &r.College.Name
	case "address":
		return &r.College.Address
	case "logo":
		return &r.College.Logo
	case "course":
		return &r.College.Course
	case "fees":
		return &r.Fees
	case "course_type":
		return &r.CourseType
	case "fees_description":
		return &r.FeesDescription
	case "placement":
		return &r.Placement
	case "highest_package":
		return &r.HighestPackage
	case "rating":
		return &r.Rating
	case "reviews_score":
		return &r.ReviewsScore
	case "reviews_count":
		return &r.ReviewsCount
	case "ranking_position":
		return &r.RankingPosition
	case "ranking_highlight":
		return &r.RankingHighlight
	case "ranking_year":
		return &r.RankingYear
	case "ranking_logo":
		return &r.RankingLogo
	}
	return nil
}

// flexString accepts a string, a number or null wherever the upstream data
// is inconsistent about how it encodes a value.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(v)
	case s == "true" || s == "false":
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unsupported value %s", s)
		}
		*f = flexString(n.String())
	}
	return nil
}

func (f *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	if node.Tag == "!!null" {
		*f = ""
		return nil
	}
	*f = flexString(node.Value)
	return nil
}

type rawProfile struct {
	Name    flexString `json:"name" yaml:"name"`
	Address flexString `json:"address" yaml:"address"`
	Logo    flexString `json:"logo" yaml:"logo"`
	Course  flexString `json:"course" yaml:"course"`
}

// rawRecord mirrors domain.Record with lenient scalar decoding. JSON keys
// follow the upstream camelCase dataset; YAML keys are snake_case.
type rawRecord struct {
	ID      flexString `json:"id" yaml:"id"`
	College rawProfile `json:"college" yaml:"college"`

	Fees            flexString `json:"fees" yaml:"fees"`
	CourseType      flexString `json:"courseType" yaml:"course_type"`
	FeesDescription flexString `json:"feesDescription" yaml:"fees_description"`
	Placement       flexString `json:"placement" yaml:"placement"`
	HighestPackage  flexString `json:"highestPackage" yaml:"highest_package"`

	Rating       flexString `json:"rating" yaml:"rating"`
	ReviewsScore flexString `json:"reviewsScore" yaml:"reviews_score"`
	ReviewsCount flexString `json:"reviewsCount" yaml:"reviews_count"`

	RankingPosition  flexString `json:"rankingPosition" yaml:"ranking_position"`
	RankingHighlight flexString `json:"rankingHighlight" yaml:"ranking_highlight"`
	RankingYear      flexString `json:"rankingYear" yaml:"ranking_year"`
	RankingLogo      flexString `json:"rankingLogo" yaml:"ranking_logo"`
}

func (r rawRecord) record() domain.Record {
	return domain.Record{
		ID: string(r.ID),
		College: domain.Profile{
			Name:    string(r.College.Name),
			Address: string(r.College.Address),
			Logo:    string(r.College.Logo),
			Course:  string(r.College.Course),
		},
		Fees:             string(r.Fees),
		CourseType:       string(r.CourseType),
		FeesDescription:  string(r.FeesDescription),
		Placement:        string(r.Placement),
		HighestPackage:   string(r.HighestPackage),
		Rating:           string(r.Rating),
		ReviewsScore:     string(r.ReviewsScore),
		ReviewsCount:     string(r.ReviewsCount),
		RankingPosition:  string(r.RankingPosition),
		RankingHighlight: string(r.RankingHighlight),
		RankingYear:      string(r.RankingYear),
		RankingLogo:      string(r.RankingLogo),
	}
}

// ensureIDs fills empty ids with a UUID derived from the record's position
// and name, so reloading the same data yields the same ids.
func ensureIDs(records []domain.Record) {
	for i := range records {
		if strings.TrimSpace(records[i].ID) != "" {
			continue
		}
		key := fmt.Sprintf("%d:%s", i, records[i].College.Name)
		records[i].ID = uuid.NewSHA1(idNamespace, []byte(key)).String()
	}
}
