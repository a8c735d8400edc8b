package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/tasks"
)

const detailReviewLimit = 5

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail != nil && m.detail.Movie != nil {
		if cmd, used := m.rate(msg, m.detailID); used {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.detailFrom
		m.detailID = 0
		m.detail = nil
		m.detailErr = nil
		return m, nil
	case key.Matches(msg, m.keys.watch):
		return m, m.toggle(tasks.Watchlist, m.detailID)
	case key.Matches(msg, m.keys.seen):
		return m, m.toggle(tasks.Seen, m.detailID)
	}
	return m, nil
}

func (m *Model) renderDetail() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.watch, m.keys.seen, m.keys.rate, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	switch {
	case m.loadingDetail:
		return fmt.Sprintf("%s\n\n%s", styles.help.Render("Загрузка фильма..."), helpView)
	case m.detailErr != nil:
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(errorText(m.detailErr)), helpView)
	case m.detail == nil || m.detail.Movie == nil:
		return helpView
	}

	mv := *m.detail.Movie
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s (%s)", formatter.Title(mv), formatter.Year(mv))))
	b.WriteString(m.userRating(mv.ID))
	b.WriteString("\n")
	if mv.EnglishTitle != "" && mv.EnglishTitle != mv.Title {
		b.WriteString(styles.help.Render(mv.EnglishTitle))
		b.WriteString("\n")
	}

	field := func(label, value string) {
		if value == "" {
			value = formatter.Placeholder
		}
		fmt.Fprintf(&b, "%-14s %s\n", label+":", value)
	}
	field("Жанры", mv.Genres.String())
	field("Страны", strings.Join(mv.Countries, ", "))
	field("Длительность", formatter.Runtime(mv.MovieLength))
	field("Режиссёр", formatter.Credits(mv.Director, 3))
	field("В ролях", formatter.Credits(mv.Persons, 6))
	field("Рейтинг", formatter.Rating(mv))
	field("Кинопоиск", formatter.Score(mv.KPRating, 1))
	field("IMDb", formatter.Score(mv.IMDbRating, 1))
	field("Критики", formatter.Score(mv.CriticsRating, 1))
	field("Голоса", formatter.Votes(mv.SumVotes))
	field("Бюджет", formatter.Money(mv.Budget))
	field("Сборы", formatter.Money(mv.FeesWorld))
	field("В списках", strings.TrimSpace(m.marks(mv.ID)))

	if d := strings.TrimSpace(mv.Description); d != "" {
		b.WriteString("\n")
		b.WriteString(d)
		b.WriteString("\n")
	}

	if len(m.detail.Similar) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.ok.Render("Похожие фильмы"))
		b.WriteString("\n")
		for _, s := range m.detail.Similar {
			item := movieItem{movie: s}
			fmt.Fprintf(&b, "  • %s  %s\n", item.Title(), styles.help.Render("★ "+formatter.Rating(s)))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.ok.Render(fmt.Sprintf("Отзывы (%d)", len(m.detail.Reviews))))
	b.WriteString("\n")
	for i, r := range m.detail.Reviews {
		if i == detailReviewLimit {
			break
		}
		content := strings.TrimSpace(r.Content)
		if content == "" {
			content = styles.help.Render("без текста")
		}
		fmt.Fprintf(&b, "  %s %s\n", styles.star.Render(fmt.Sprintf("★%d", r.Stars())), content)
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(m.status))
	}
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
