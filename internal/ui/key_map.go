package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	search    key.Binding
	sort      key.Binding
	apply     key.Binding
	next      key.Binding
	prev      key.Binding
	watch     key.Binding
	seen      key.Binding
	rate      key.Binding
	recommend key.Binding
	restart   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sort:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		apply:     key.NewBinding(key.WithKeys("a", "ctrl+r"), key.WithHelp("a", "apply")),
		next:      key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next page")),
		prev:      key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "prev page")),
		watch:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist")),
		seen:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "seen")),
		rate:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rate")),
		recommend: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "pick a movie")),
		restart:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "restart")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.sort, k.apply, k.next, k.prev},
		{k.watch, k.seen, k.rate, k.recommend},
		{k.restart, k.quit},
	}
}

// starsFor maps the digit keys of the rating selector to stars; 0 is ten.
func starsFor(s string) (int, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	if s[0] == '0' {
		return 10, true
	}
	return int(s[0] - '0'), true
}
