package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/tasks"
)

func (m *Model) selected() (models.Movie, bool) {
	movies := m.catalog.Movies()
	if m.cursor < 0 || m.cursor >= len(movies) {
		return models.Movie{}, false
	}
	return movies[m.cursor], true
}

func (m *Model) handleCatalogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleSearchKeys(msg)
	}

	if mv, ok := m.selected(); ok {
		if cmd, used := m.rate(msg, mv.ID); used {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.catalog.Movies())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.search):
		m.editing = true
		m.search.Focus()
	case key.Matches(msg, m.keys.sort):
		m.catalog.EditInput(func(f *models.Filters) { f.SortBy = nextSortKey(f.SortBy) })
	case key.Matches(msg, m.keys.apply):
		return m, m.apply()
	case key.Matches(msg, m.keys.next):
		if req, ok := m.catalog.NextPage(); ok {
			return m, m.fetch(req)
		}
	case key.Matches(msg, m.keys.prev):
		if req, ok := m.catalog.PrevPage(); ok {
			return m, m.fetch(req)
		}
	case key.Matches(msg, m.keys.enter):
		if mv, ok := m.selected(); ok {
			return m, m.loadDetail(mv.ID)
		}
	case key.Matches(msg, m.keys.watch):
		if mv, ok := m.selected(); ok {
			return m, m.toggle(tasks.Watchlist, mv.ID)
		}
	case key.Matches(msg, m.keys.seen):
		if mv, ok := m.selected(); ok {
			return m, m.toggle(tasks.Seen, mv.ID)
		}
	case key.Matches(msg, m.keys.recommend):
		return m, m.openQuestionnaire()
	}
	return m, nil
}

// handleSearchKeys edits the pending search text. Typing never fetches;
// enter applies, esc leaves the edit pending.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.search.Blur()
		return m, m.apply()
	case tea.KeyEsc:
		m.editing = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	value := m.search.Value()
	m.catalog.EditInput(func(f *models.Filters) { f.Search = value })
	return m, cmd
}

func (m *Model) apply() tea.Cmd {
	req, err := m.catalog.Apply()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = ""
	return m.fetch(req)
}

func nextSortKey(current string) string {
	i := slices.Index(models.SortKeys, current)
	return models.SortKeys[(i+1)%len(models.SortKeys)]
}

func describeFilters(f models.Filters) string {
	var parts []string
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("«%s»", s))
	}
	if f.Genre != "" {
		parts = append(parts, f.Genre)
	}
	if f.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", f.Year))
	}
	if f.MinRating > 0 {
		parts = append(parts, fmt.Sprintf("от %.1f", f.MinRating))
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = models.SortKeys[0]
	}
	parts = append(parts, "сортировка: "+sortBy)
	return strings.Join(parts, ", ")
}

func (m *Model) renderCatalog() string {
	snap := m.catalog.Snapshot()

	var b strings.Builder
	b.WriteString(styles.title.Render("Каталог фильмов"))
	b.WriteString("  ")
	b.WriteString(m.viewerLine())
	b.WriteString("\n")

	b.WriteString(m.search.View())
	b.WriteString("\n")
	if snap.Input != snap.Applied {
		b.WriteString(styles.warn.Render("Не применено: " + describeFilters(snap.Input)))
		b.WriteString("\n")
	}
	b.WriteString(styles.help.Render("Применено: " + describeFilters(snap.Applied)))
	b.WriteString("\n\n")

	switch snap.State {
	case tasks.CatalogFetching:
		b.WriteString(styles.help.Render(fmt.Sprintf("Загрузка страницы %d...", snap.Page)))
	case tasks.CatalogErrored:
		b.WriteString(styles.err.Render(errorText(snap.Err)))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("a — повторить"))
	case tasks.CatalogReady:
		if len(snap.Movies) == 0 {
			b.WriteString(styles.warn.Render("Фильмы не найдены"))
			break
		}
		for i, mv := range snap.Movies {
			row := fmt.Sprintf("%s %s", m.marks(mv.ID), formatter.MovieRow(m.catalog.Rank(i), mv))
			if i == m.cursor {
				row = styles.selected.Render(row)
			}
			b.WriteString(row)
			b.WriteString(m.userRating(mv.ID))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(pager(snap))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(m.status))
	}

	helpKeys := []key.Binding{m.keys.search, m.keys.apply, m.keys.next, m.keys.prev, m.keys.enter, m.keys.watch, m.keys.seen, m.keys.rate, m.keys.recommend, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func pager(snap tasks.CatalogSnapshot) string {
	prev, next := "  ", "  "
	if snap.HasPrev {
		prev = "← "
	}
	if snap.HasNext {
		next = " →"
	}
	return styles.help.Render(fmt.Sprintf("%sСтраница %d%s", prev, snap.Page, next))
}
