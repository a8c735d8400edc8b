package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/desertthunder/kino/internal/tasks"
	"github.com/urfave/cli/v3"
)

func filtersFrom(cmd *cli.Command) models.Filters {
	return models.Filters{
		Search:    cmd.String("search"),
		Genre:     cmd.String("genre"),
		Year:      cmd.Int("year"),
		MinRating: cmd.Float("min-rating"),
		SortBy:    cmd.String("sort"),
	}
}

// MoviesList prints one catalog page. A --link deep link overrides --search.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	pageSize := cmd.Int("page-size")
	if pageSize <= 0 {
		pageSize = r.config.API.PageSize
	}

	catalog := tasks.NewCatalog(pageSize)
	catalog.SetInput(filtersFrom(cmd))
	if _, err := catalog.Apply(); err != nil {
		return err
	}
	if link := cmd.String("link"); link != "" {
		q, ok, err := tasks.ParseDeepLink(link)
		if err != nil {
			return err
		}
		if ok {
			catalog.SyncQuery(q)
		}
	}

	req := catalog.GoTo(cmd.Int("page"))
	r.logger.Debug("fetching catalog page", "page", req.Page, "query", req.Query.Values().Encode())
	catalog.Fetch(ctx, r.client, req)

	snap := catalog.Snapshot()
	if snap.Err != nil {
		return fmt.Errorf("%s (Status: %s)", snap.Err.Message, snap.Err.StatusLabel())
	}
	if cmd.Bool("json") {
		return r.writeJSON(snap.Movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Каталог · страница %d", snap.Page))
	if len(snap.Movies) == 0 {
		return r.writePlain("Фильмы не найдены\n")
	}
	for i, m := range snap.Movies {
		r.writePlain("%s\n", formatter.MovieRow(catalog.Rank(i), m))
	}

	var nav []string
	if snap.HasPrev {
		nav = append(nav, fmt.Sprintf("--page %d", snap.Page-1))
	}
	if snap.HasNext {
		nav = append(nav, fmt.Sprintf("--page %d", snap.Page+1))
	}
	if len(nav) > 0 {
		r.writePlainln("More: %s", strings.Join(nav, " | "))
	}
	return nil
}

// MoviesShow prints a movie page.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	detail, err := tasks.LoadDetail(ctx, r.client, id, cmd.Int("similar"), r.logger)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(detail, cmd.Bool("pretty"))
	}

	m := *detail.Movie
	r.writePlainHeader(fmt.Sprintf("%s (%s)", formatter.Title(m), formatter.Year(m)))
	if m.EnglishTitle != "" && m.EnglishTitle != m.Title {
		r.writePlain("%s\n", m.EnglishTitle)
	}
	field := func(label, value string) {
		if value == "" {
			value = formatter.Placeholder
		}
		r.writePlain("%-14s %s\n", label+":", value)
	}
	field("Жанры", m.Genres.String())
	field("Страны", strings.Join(m.Countries, ", "))
	field("Длительность", formatter.Runtime(m.MovieLength))
	field("Режиссёр", formatter.Credits(m.Director, 3))
	field("В ролях", formatter.Credits(m.Persons, 8))
	field("Рейтинг", formatter.Rating(m))
	field("Кинопоиск", formatter.Score(m.KPRating, 1))
	field("IMDb", formatter.Score(m.IMDbRating, 1))
	field("Критики", formatter.Score(m.CriticsRating, 1))
	field("Голоса", formatter.Votes(m.SumVotes))
	field("Бюджет", formatter.Money(m.Budget))
	field("Сборы", formatter.Money(m.FeesWorld))
	if d := strings.TrimSpace(m.Description); d != "" {
		r.writePlainln("%s", d)
	}

	if len(detail.Similar) > 0 {
		r.writePlainln("Похожие фильмы:")
		for i, s := range detail.Similar {
			r.writePlain("%s\n", formatter.MovieRow(i+1, s))
		}
	}

	r.writePlainln("Отзывы (%d):", len(detail.Reviews))
	for _, rv := range detail.Reviews {
		r.writePlain("%s\n", reviewLine(rv))
	}
	return nil
}

// MoviesSimilar lists movies similar to one movie.
func (r *Runner) MoviesSimilar(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	movies, err := r.client.SimilarMovies(ctx, id, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}
	if len(movies) == 0 {
		return r.writePlain("Похожие фильмы не найдены\n")
	}
	for i, m := range movies {
		r.writePlain("%s\n", formatter.MovieRow(i+1, m))
	}
	return nil
}
