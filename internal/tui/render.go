package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"collegeview/internal/domain"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	tableBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	detailBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedBorder  = lipgloss.Color("12")
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	loadingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	activeSort     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	inactiveSort   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(18)
)

const (
	rankWidth      = 4
	feesWidth      = 12
	placementWidth = 12
	reviewsWidth   = 9
	rankingWidth   = 9
	minNameWidth   = 20
)

func columns(totalWidth int) []table.Column {
	// cell padding is one column on each side
	fixed := rankWidth + feesWidth + placementWidth + reviewsWidth + rankingWidth + 6*2
	name := totalWidth - fixed - 2
	if name < minNameWidth {
		name = minNameWidth
	}
	return []table.Column{
		{Title: "#", Width: rankWidth},
		{Title: "College", Width: name},
		{Title: "Fees", Width: feesWidth},
		{Title: "Placement", Width: placementWidth},
		{Title: "Reviews", Width: reviewsWidth},
		{Title: "Ranking", Width: rankingWidth},
	}
}

func rows(records []domain.Record) []table.Row {
	out := make([]table.Row, len(records))
	for i, r := range records {
		out[i] = table.Row{
			strconv.Itoa(i + 1),
			r.College.Name,
			orDash(r.Fees),
			orDash(r.Placement),
			reviews(r),
			orDash(r.RankingPosition),
		}
	}
	return out
}

func reviews(r domain.Record) string {
	if strings.TrimSpace(r.ReviewsScore) == "" {
		return "-"
	}
	return r.ReviewsScore + "/5"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

var sortLabels = map[domain.SortField]string{
	domain.SortFees:         "Fees",
	domain.SortRating:       "Rating",
	domain.SortReviewsScore: "Reviews",
}

func arrow(d domain.Direction) string {
	if d == domain.Descending {
		return "↓"
	}
	return "↑"
}

// sortBar lists every sortable field with the direction a toggle would
// currently show, highlighting the active one.
func sortBar(cfg domain.SortConfig) string {
	parts := make([]string, 0, len(domain.SortFields)+1)
	parts = append(parts, "Sort:")
	for _, f := range domain.SortFields {
		label := fmt.Sprintf("%s %s", sortLabels[f], arrow(cfg.DirectionFor(f)))
		if cfg.Field == f {
			parts = append(parts, activeSort.Render(label))
		} else {
			parts = append(parts, inactiveSort.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// detail renders the full record with the query highlighted in its name.
func detail(r domain.Record, query string) string {
	var b strings.Builder
	b.WriteString(highlightMatch(r.College.Name, query))
	b.WriteString("\n")
	if r.College.Address != "" {
		b.WriteString(summaryStyle.Render(r.College.Address))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	line := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	line("Course", r.College.Course)
	line("Course type", r.CourseType)
	fees := r.Fees
	if fees != "" && r.FeesDescription != "" {
		fees += " (" + r.FeesDescription + ")"
	}
	line("Fees", fees)
	line("Avg. placement", r.Placement)
	line("Highest package", r.HighestPackage)
	line("Rating", r.Rating)
	rv := r.ReviewsScore
	if rv != "" && r.ReviewsCount != "" {
		rv += " from " + r.ReviewsCount + " reviews"
	}
	line("Reviews", rv)
	ranking := r.RankingHighlight
	if ranking != "" && r.RankingYear != "" {
		ranking += " (" + r.RankingYear + ")"
	}
	line("Ranking", ranking)
	line("Logo", r.College.Logo)
	return strings.TrimRight(b.String(), "\n")
}

// highlightMatch styles the first case-insensitive occurrence of query in
// text. Texts whose lowercase form changes byte length are left plain.
func highlightMatch(text, query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	lower := strings.ToLower(text)
	if q == "" || len(lower) != len(text) {
		return titleStyle.Render(text)
	}
	i := strings.Index(lower, q)
	if i < 0 {
		return titleStyle.Render(text)
	}
	return titleStyle.Render(text[:i]) + highlightStyle.Render(text[i:i+len(q)]) + titleStyle.Render(text[i+len(q):])
}
