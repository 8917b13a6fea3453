package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Focus       key.Binding
	SortFees    key.Binding
	SortRating  key.Binding
	SortReviews key.Binding
	ClearSort   key.Binding
	ClearQuery  key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		SortFees:    key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "fees")),
		SortRating:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rating")),
		SortReviews: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "reviews")),
		ClearSort:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "no sort")),
		ClearQuery:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Up:          key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:        key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:         key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "top")),
		Bottom:      key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "bottom")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.SortFees, k.SortRating, k.SortReviews, k.ClearSort, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Focus, k.ClearQuery, k.Quit},
		{k.SortFees, k.SortRating, k.SortReviews, k.ClearSort},
	}
}

// navigation lists the bindings that move the table cursor.
func (k keyMap) navigation() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom}
}
