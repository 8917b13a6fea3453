package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"collegeview/internal/domain"
	"collegeview/internal/engine"
)

// ListingPort is the TUI-facing subset of the listing engine.
type ListingPort interface {
	SetQuery(q string)
	SetSort(cfg domain.SortConfig)
	ToggleSort(field domain.SortField)
	Snapshot() engine.Snapshot
	OnChange(fn func(engine.Snapshot)) (cancel func())
}

// NearEndObserver is told where the cursor is after every move.
type NearEndObserver interface {
	Observe(pos, rendered int) bool
}

type focus int

const (
	focusSearch focus = iota
	focusTable
)

// changedMsg tells the update loop that the engine committed new state.
type changedMsg struct{}

// Model is the Bubble Tea model for the listing browser.
type Model struct {
	listing ListingPort
	nearEnd NearEndObserver
	changes chan struct{}
	cancel  func()

	keys     keyMap
	help     help.Model
	input    textinput.Model
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model

	snap    engine.Snapshot
	summary string
	focus   focus
	ready   bool
}

// New creates a new TUI model bound to listing. Engine changes made off
// the update loop, such as a settled reveal, wake it through a single-slot
// channel; the model then reads the engine's current snapshot.
func New(listing ListingPort, nearEnd NearEndObserver, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "college name"
	ti.Focus()
	ti.CharLimit = 0

	tbl := table.New(
		table.WithColumns(columns(80)),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	changes := make(chan struct{}, 1)
	cancel := listing.OnChange(func(engine.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := Model{
		listing:  listing,
		nearEnd:  nearEnd,
		changes:  changes,
		cancel:   cancel,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    ti,
		table:    tbl,
		viewport: viewport.New(80, 8),
		spinner:  sp,
		summary:  summary,
	}
	m.apply(listing.Snapshot())
	return m
}

// Close stops listening for engine changes.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Init starts the cursor blink, the spinner and the change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.changes))
}

// Update handles key, window and engine events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case changedMsg:
		m.apply(m.listing.Snapshot())
		return m, waitForChange(m.changes)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Focus):
			return m, m.toggleFocus()
		case key.Matches(msg, m.keys.SortFees):
			m.listing.ToggleSort(domain.SortFees)
			return m.reset(), nil
		case key.Matches(msg, m.keys.SortRating):
			m.listing.ToggleSort(domain.SortRating)
			return m.reset(), nil
		case key.Matches(msg, m.keys.SortReviews):
			m.listing.ToggleSort(domain.SortReviewsScore)
			return m.reset(), nil
		case key.Matches(msg, m.keys.ClearSort):
			m.listing.SetSort(domain.SortConfig{})
			return m.reset(), nil
		case key.Matches(msg, m.keys.ClearQuery) && m.focus == focusSearch:
			m.input.SetValue("")
			m.listing.SetQuery("")
			return m.reset(), nil
		}

		if m.focus == focusTable || key.Matches(msg, m.keys.navigation()...) {
			return m.move(msg)
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.listing.SetQuery(v)
			m = m.reset()
		}
		return m, cmd
	}
	return m, nil
}

// move forwards a navigation key to the table and reports the new cursor
// position to the near-end observer, unless every match is already shown.
func (m Model) move(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before || key.Matches(msg, m.keys.navigation()...) {
		m.refreshDetail()
		if m.nearEnd != nil && !m.snap.Exhausted() {
			if m.nearEnd.Observe(m.table.Cursor(), len(m.table.Rows())) {
				m.apply(m.listing.Snapshot())
			}
		}
	}
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusSearch {
		m.focus = focusTable
		m.input.Blur()
		return nil
	}
	m.focus = focusSearch
	return m.input.Focus()
}

// reset moves the cursor back to the top after a query or sort change and
// picks up the engine's new state.
func (m Model) reset() Model {
	m.table.GotoTop()
	m.apply(m.listing.Snapshot())
	return m
}

func (m *Model) apply(s engine.Snapshot) {
	m.snap = s
	m.table.SetRows(rows(s.Visible))
	if n := len(s.Visible); m.table.Cursor() >= n {
		m.table.SetCursor(max(0, n-1))
	}
	m.refreshDetail()
}

func (m *Model) refreshDetail() {
	if len(m.snap.Visible) == 0 {
		m.viewport.SetContent("No colleges match.")
		return
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snap.Visible) {
		i = 0
	}
	m.viewport.SetContent(detail(m.snap.Visible[i], m.snap.Query))
	m.viewport.GotoTop()
}

func (m *Model) resize(width, height int) {
	m.ready = true
	m.help.Width = width

	_, qh := queryBoxStyle.GetFrameSize()
	_, th := tableBoxStyle.GetFrameSize()
	_, dh := detailBoxStyle.GetFrameSize()
	// title, summary, sort bar, status, help
	reserved := 5 + qh + 1 + th + dh
	avail := height - reserved
	if avail < 6 {
		avail = 6
	}
	tableHeight := avail * 3 / 5
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(3, tableHeight))
	m.table.SetWidth(max(minNameWidth, width-2))
	m.viewport.Width = max(20, width-4)
	m.viewport.Height = max(3, avail-tableHeight)
	m.input.Width = max(10, width-len(m.input.Prompt)-6)
	m.refreshDetail()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("College Listing")
	summary := summaryStyle.Render(m.summary)

	qs, ts := queryBoxStyle, tableBoxStyle
	if m.focus == focusSearch {
		qs = qs.BorderForeground(focusedBorder)
	} else {
		ts = ts.BorderForeground(focusedBorder)
	}
	input := qs.Render(m.input.View())
	tbl := ts.Render(m.table.View())
	detailPane := detailBoxStyle.Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		summary,
		input,
		sortBar(m.snap.Sort),
		tbl,
		detailPane,
		m.status(),
		m.help.View(m.keys),
	)
}

func (m Model) status() string {
	counts := fmt.Sprintf("%d shown / %d matched / %d total", len(m.snap.Visible), m.snap.Matched, m.snap.Total)
	switch {
	case m.snap.Loading():
		return loadingStyle.Render(m.spinner.View()+" Loading...") + "  " + statusStyle.Render(counts)
	case m.snap.Matched > 0 && m.snap.Exhausted():
		return statusStyle.Render(counts + "  (end of list)")
	}
	return statusStyle.Render(counts)
}
