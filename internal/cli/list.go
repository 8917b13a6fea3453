package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collegeview/internal/dataset"
	"collegeview/internal/domain"
	"collegeview/internal/engine"
	"collegeview/internal/logger"
	"collegeview/internal/schedule"
	"collegeview/internal/summarizer"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	Query   string
	Sort    string
	Desc    bool
	Reveals int
	Format  string
}

// NewListCommand creates the headless list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the visible rows without the interactive UI",
		Long: `Print the rows the browser would show for a query and sort.

Each --reveals step acts as if the cursor reached the end of the list and
the settling delay passed, growing the window by one increment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive name filter")
	cmd.Flags().StringVarP(&opts.Sort, "sort", "s", "", "sort field (fees|rating|reviewsScore)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().IntVarP(&opts.Reveals, "reveals", "r", 0, "number of reveal steps to apply")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format (text|json)")
	return cmd
}

type listRow struct {
	Position     int    `json:"position"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Fees         string `json:"fees"`
	Rating       string `json:"rating"`
	ReviewsScore string `json:"reviewsScore"`
}

type listOutput struct {
	Query   string            `json:"query"`
	Sort    domain.SortConfig `json:"sort"`
	Window  int               `json:"window"`
	Matched int               `json:"matched"`
	Total   int               `json:"total"`
	Rows    []listRow         `json:"rows"`
}

func runList(cmd *cobra.Command, rootOpts *RootOptions, opts *ListOptions) error {
	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
	}
	if opts.Reveals < 0 {
		return fmt.Errorf("--reveals must not be negative, got %d", opts.Reveals)
	}
	field, err := parseSortField(opts.Sort)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	log, err := streamLogger(cmd.ErrOrStderr(), cfg, rootOpts)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx := logger.ContextWithLogger(cmd.Context(), log)
	records, err := loadRecords(ctx, cfg.Dataset)
	if err != nil {
		return err
	}

	engOpts, err := engineOptions(cfg.Reveal, log)
	if err != nil {
		return err
	}
	clock := schedule.NewManual()
	e := engine.New(dataset.NewMemory(records), append(engOpts, engine.WithScheduler(clock))...)
	defer e.Close()

	if opts.Query != "" {
		e.SetQuery(opts.Query)
	}
	if field != domain.SortNone {
		dir := domain.Ascending
		if opts.Desc {
			dir = domain.Descending
		}
		e.SetSort(domain.SortConfig{Field: field, Direction: dir})
	}
	for i := 0; i < opts.Reveals; i++ {
		e.NearEnd()
		clock.Advance(cfg.Reveal.SettleDelay())
	}

	snap := e.Snapshot()
	log.Debug("listing", zap.Int("visible", len(snap.Visible)), zap.Int("window", snap.Window))

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), snap)
	}
	return writeText(cmd.OutOrStdout(), snap, summarizer.Summarize(records, 3))
}

func toRows(visible []domain.Record) []listRow {
	rows := make([]listRow, len(visible))
	for i, r := range visible {
		rows[i] = listRow{
			Position:     i + 1,
			ID:           r.ID,
			Name:         r.College.Name,
			Fees:         r.Fees,
			Rating:       r.Rating,
			ReviewsScore: r.ReviewsScore,
		}
	}
	return rows
}

func writeJSON(w io.Writer, snap engine.Snapshot) error {
	data, err := json.MarshalIndent(listOutput{
		Query:   snap.Query,
		Sort:    snap.Sort,
		Window:  snap.Window,
		Matched: snap.Matched,
		Total:   snap.Total,
		Rows:    toRows(snap.Visible),
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func writeText(w io.Writer, snap engine.Snapshot, summary summarizer.Summary) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "College", "Fees", "Rating", "Reviews")
	for _, r := range toRows(snap.Visible) {
		t.Row(strconv.Itoa(r.Position), r.Name, orDash(r.Fees), orDash(r.Rating), orDash(r.ReviewsScore))
	}

	_, err := fmt.Fprintf(w, "%s\n%s\nShowing %d of %d matches (%d total)\n",
		summary, t.Render(), len(snap.Visible), snap.Matched, snap.Total)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
