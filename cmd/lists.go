package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/repositories"
	"github.com/desertthunder/kino/internal/services"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/desertthunder/kino/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ListsLs prints the signed-in user's lists. The watchlist is created first
// when it does not exist yet.
func (r *Runner) ListsLs(ctx context.Context, cmd *cli.Command) error {
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if _, err := client.EnsureList(ctx, user.ID, tasks.Watchlist.Title, tasks.Watchlist.Description); err != nil {
		r.logger.Warn("could not ensure watchlist", "error", err)
	}

	lists, err := client.UserLists(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if cmd.Bool("json") {
		return r.writeJSON(lists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Списки %s", user.Username))
	for _, l := range lists {
		r.writePlain("%s\n", listLine(l))
	}
	return nil
}

func listLine(l models.List) string {
	line := fmt.Sprintf("%5d  %s (%d)", l.ID, l.Title, listSize(l))
	if l.Protected() {
		line += " 🔒"
	}
	if l.Description != "" {
		line += " · " + l.Description
	}
	return line
}

func listSize(l models.List) int {
	if len(l.Movies) > 0 {
		return len(l.Movies)
	}
	return l.MovieCount
}

// ListsShow prints a list with its movies.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	client, err := r.session()
	if err != nil {
		return err
	}
	list, err := client.GetList(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	r.writePlainHeader(listLine(*list))
	if len(list.Movies) == 0 {
		return r.writePlain("Список пуст\n")
	}
	for i, m := range list.Movies {
		r.writePlain("%s\n", formatter.MovieRow(i+1, m))
	}
	return nil
}

// ListsCreate creates a list.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	create := models.ListCreate{Title: cmd.StringArg("title"), Description: cmd.String("description")}
	list, err := client.CreateList(ctx, create)
	if err != nil {
		return fmt.Errorf("failed to create list: %s", describe(err))
	}
	return r.writePlain("✓ Created list %d «%s»\n", list.ID, list.Title)
}

// protectedList fetches list id and refuses reserved lists.
func protectedList(ctx context.Context, client *services.Client, id int64) (*models.List, error) {
	list, err := client.GetList(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if list.Protected() {
		return nil, fmt.Errorf("%w: «%s» cannot be renamed or deleted", shared.ErrProtectedList, list.Title)
	}
	return list, nil
}

// ListsUpdate renames a list or changes its description. Reserved lists are refused.
func (r *Runner) ListsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if !cmd.IsSet("title") && !cmd.IsSet("description") {
		return fmt.Errorf("%w: --title or --description", shared.ErrMissingArgument)
	}
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	if _, err := protectedList(ctx, client, id); err != nil {
		return err
	}

	var update models.ListUpdate
	if cmd.IsSet("title") {
		title := cmd.String("title")
		update.Title = &title
	}
	if cmd.IsSet("description") {
		desc := cmd.String("description")
		update.Description = &desc
	}
	list, err := client.UpdateList(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update list: %s", describe(err))
	}
	return r.writePlain("✓ Updated list %d «%s»\n", list.ID, list.Title)
}

// ListsDelete deletes a list. Reserved lists are refused.
func (r *Runner) ListsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	list, err := protectedList(ctx, client, id)
	if err != nil {
		return err
	}
	if err := client.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("failed to delete list: %s", describe(err))
	}
	return r.writePlain("✓ Deleted list «%s»\n", list.Title)
}

// ListsAdd adds movies to a list.
func (r *Runner) ListsAdd(ctx context.Context, cmd *cli.Command) error {
	return r.changeMovies(ctx, cmd, true)
}

// ListsRemove removes movies from a list.
func (r *Runner) ListsRemove(ctx context.Context, cmd *cli.Command) error {
	return r.changeMovies(ctx, cmd, false)
}

func (r *Runner) changeMovies(ctx context.Context, cmd *cli.Command, add bool) error {
	listID, err := parseID("list", cmd.String("list"))
	if err != nil {
		return err
	}
	movieIDs, err := parseIDs("movie id", cmd.Args().Slice())
	if err != nil {
		return err
	}
	client, err := r.signedIn()
	if err != nil {
		return err
	}

	var list *models.List
	if add {
		list, err = client.AddMovies(ctx, listID, movieIDs...)
	} else {
		list, err = client.RemoveMovies(ctx, listID, movieIDs...)
	}
	if err != nil {
		return fmt.Errorf("failed to change list: %s", describe(err))
	}
	return r.writePlain("✓ «%s» now has %d movies\n", list.Title, listSize(*list))
}

// toggleReserved flips a movie in one of the reserved lists, creating the list when needed.
func (r *Runner) toggleReserved(reserved tasks.ReservedList) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		movieID, err := parseID("movie-id", cmd.StringArg("movie-id"))
		if err != nil {
			return err
		}
		client, err := r.signedIn()
		if err != nil {
			return err
		}

		membership := tasks.NewMembership()
		viewer, err := tasks.ResolveViewer(ctx, client, membership, r.logger, reserved)
		if err != nil {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
		}
		if viewer.Anonymous() {
			return fmt.Errorf("%w: stored token was rejected", shared.ErrNotAuthenticated)
		}
		list, ok := viewer.List(reserved)
		if !ok {
			return fmt.Errorf("%w: list «%s» is unavailable", shared.ErrAPIRequest, reserved.Title)
		}

		member, err := membership.Toggle(ctx, client, list.ID, movieID, membership.Contains(list.ID, movieID))
		if err != nil {
			return fmt.Errorf("failed to change «%s»: %s", list.Title, describe(err))
		}
		if member {
			return r.writePlain("✓ Added to «%s»\n", list.Title)
		}
		return r.writePlain("✓ Removed from «%s»\n", list.Title)
	}
}

// ListsExport writes lists to files and records the run in the local database.
func (r *Runner) ListsExport(ctx context.Context, cmd *cli.Command) error {
	var (
		client *services.Client
		err    error
		ids    []int64
	)
	if cmd.Bool("all") {
		if client, err = r.signedIn(); err != nil {
			return err
		}
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
		}
		lists, err := client.UserLists(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
		}
		for _, l := range lists {
			ids = append(ids, l.ID)
		}
	} else {
		if ids, err = parseIDs("list id", cmd.Args().Slice()); err != nil {
			return err
		}
		if client, err = r.session(); err != nil {
			return err
		}
	}

	var runs tasks.RunRecorder
	if _, err := r.store(); err == nil {
		runs = repositories.NewExportRunRepository(r.db)
	} else {
		r.logger.Warn("export history disabled", "error", err)
	}

	prog := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range prog {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	exporter := tasks.NewExporter(client, runs, shared.WithLogger(r.logger, "component", "export"))
	result, err := exporter.Export(ctx, prog, ids, tasks.ExportOpts{
		Format:         cmd.String("format"),
		OutputDir:      cmd.String("output"),
		NumWorkers:     cmd.Int("workers"),
		RateLimit:      cmd.Float("rate"),
		DownloadCovers: cmd.Bool("covers"),
	})
	close(prog)
	wg.Wait()
	if err != nil && result == nil {
		return err
	}

	r.writePlainHeader("Export")
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("✓ %s (%d files)\n", res.Title, len(res.Files))
		} else {
			r.writePlain("✗ %s: %v\n", res.Title, res.Error)
		}
	}
	r.writePlainln("%d of %d lists exported to %s", result.Succeeded, result.TotalLists, result.OutputDir)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return err
}
