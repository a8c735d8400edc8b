package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
)

var (
	_ list.Item = optionItem("")
	_ list.Item = movieItem{}
)

// optionItem is one answer of a questionnaire step.
type optionItem string

func (i optionItem) FilterValue() string { return string(i) }
func (i optionItem) Title() string       { return string(i) }
func (i optionItem) Description() string { return "" }

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return formatter.Title(i.movie) }
func (i movieItem) Title() string {
	return fmt.Sprintf("%s (%s)", formatter.Title(i.movie), formatter.Year(i.movie))
}

func (i movieItem) Description() string {
	parts := []string{"★ " + formatter.Rating(i.movie)}
	if len(i.movie.Genres) > 0 {
		parts = append(parts, strings.Join(i.movie.Genres, ", "))
	}
	if d := formatter.Credits(i.movie.Director, 1); d != formatter.Placeholder {
		parts = append(parts, d)
	}
	return strings.Join(parts, " • ")
}

func optionItems(options []string) []list.Item {
	items := make([]list.Item, len(options))
	for i, o := range options {
		items[i] = optionItem(o)
	}
	return items
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}
