// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/tasks"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true}
}

// setupCommand handles local setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config.toml if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rollback", Usage: "Revert the most recent migration instead"},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles accounts and the stored session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign out and manage the account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password and store the access token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (at least 6 characters)", Required: true},
					&cli.StringFlag{Name: "confirm", Usage: "Password confirmation", Required: true},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored access token",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Action: r.AuthStatus,
			},
			{
				Name:   "profile",
				Usage:  "Show the extended profile with statistics",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.AuthProfile,
			},
			{
				Name:  "password",
				Usage: "Change the password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "old", Usage: "Current password", Required: true},
					&cli.StringFlag{Name: "new", Usage: "New password", Required: true},
					&cli.StringFlag{Name: "confirm", Usage: "New password confirmation", Required: true},
				},
				Action: r.AuthPassword,
			},
			{
				Name:  "forgot",
				Usage: "Request a password reset email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
				},
				Action: r.AuthForgot,
			},
			{
				Name:  "reset",
				Usage: "Set a new password with the token from the reset email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Usage: "Reset token", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "New password", Required: true},
				},
				Action: r.AuthReset,
			},
			{
				Name:  "yandex",
				Usage: "Sign in through Yandex in the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Local callback address (defaults to api.callback_addr)"},
					&cli.DurationFlag{Name: "timeout", Usage: "How long to wait for the browser", Value: defaultLoginTimeout},
					&cli.BoolFlag{Name: "no-browser", Usage: "Print the login URL instead of opening it"},
				},
				Action: r.AuthYandex,
			},
			{
				Name:  "import",
				Usage: "Import the access token from a request copied as cURL in the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "curl", Usage: "cURL command from browser DevTools (Copy as cURL)"},
					&cli.StringFlag{Name: "curl-file", Usage: "Path to a file containing the cURL command"},
				},
				Action: r.AuthImport,
			},
		},
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Title search text"},
		&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre filter"},
		&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "Release year"},
		&cli.FloatFlag{Name: "min-rating", Usage: "Minimum rating (0-10)"},
		&cli.StringFlag{Name: "sort", Usage: "Sort key: " + strings.Join(models.SortKeys, ", ")},
	}
}

// moviesCommand handles the catalog.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one catalog page",
				Flags: append(filterFlags(),
					&cli.IntFlag{Name: "page", Usage: "1-based page number", Value: 1},
					&cli.IntFlag{Name: "page-size", Usage: "Movies per page (defaults to api.page_size)"},
					&cli.StringFlag{Name: "link", Usage: "Catalog link such as '/?q=Matrix'; its search text wins over --search"},
					jsonFlag(), prettyFlag(),
				),
				Action: r.MoviesList,
			},
			{
				Name:      "show",
				Usage:     "Show a movie with similar movies and reviews",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "similar", Usage: "Number of similar movies", Value: 6},
					jsonFlag(), prettyFlag(),
				},
				Action: r.MoviesShow,
			},
			{
				Name:      "similar",
				Usage:     "List movies similar to a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Number of movies", Value: 10},
					jsonFlag(), prettyFlag(),
				},
				Action: r.MoviesSimilar,
			},
		},
	}
}

func toggleCommand(r *Runner, name string, list tasks.ReservedList) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     "Add a movie to «" + list.Title + "», or remove it when it is already there",
		Arguments: []cli.Argument{&cli.StringArg{Name: "movie-id"}},
		Action:    r.toggleReserved(list),
	}
}

// listsCommand handles the signed-in user's lists.
func listsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"l"},
		Usage:   "Manage movie lists",
		Commands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "Show your lists (creating the watchlist when missing)",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.ListsLs,
			},
			{
				Name:      "show",
				Usage:     "Show a list with its movies",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.ListsShow,
			},
			{
				Name:      "create",
				Usage:     "Create a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "List description"},
				},
				Action: r.ListsCreate,
			},
			{
				Name:      "update",
				Usage:     "Rename a list or change its description",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
				},
				Action: r.ListsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ListsDelete,
			},
			{
				Name:      "add",
				Usage:     "Add movies to a list: kino lists add --list ID MOVIE_ID...",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "list", Usage: "List ID", Required: true}},
				Action:    r.ListsAdd,
				ArgsUsage: "MOVIE_ID...",
			},
			{
				Name:      "remove",
				Usage:     "Remove movies from a list: kino lists remove --list ID MOVIE_ID...",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "list", Usage: "List ID", Required: true}},
				Action:    r.ListsRemove,
				ArgsUsage: "MOVIE_ID...",
			},
			toggleCommand(r, "watch", tasks.Watchlist),
			toggleCommand(r, "seen", tasks.Seen),
			toggleCommand(r, "favorite", tasks.Favorites),
			{
				Name:      "export",
				Usage:     "Export lists to files: kino lists export [--all] [LIST_ID...]",
				ArgsUsage: "LIST_ID...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: " + strings.Join(tasks.ExportFormats, ", "), Value: tasks.FormatCSV},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory", Value: "./exports"},
					&cli.BoolFlag{Name: "all", Usage: "Export every list you own"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent exports", Value: 3},
					&cli.FloatFlag{Name: "rate", Usage: "List fetches per second", Value: 5},
					&cli.BoolFlag{Name: "covers", Usage: "Download the first poster as cover.jpg (markdown only)"},
				},
				Action: r.ListsExport,
			},
		},
	}
}

// reviewsCommand handles reviews and quick ratings.
func reviewsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "reviews",
		Aliases: []string{"r"},
		Usage:   "Read and write reviews",
		Commands: []*cli.Command{
			{
				Name:      "movie",
				Usage:     "Show the reviews of a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.ReviewsMovie,
			},
			{
				Name:  "user",
				Usage: "Show a user's reviews (yours by default)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "User ID"},
					&cli.IntFlag{Name: "skip", Usage: "Reviews to skip"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum reviews", Value: 50},
					jsonFlag(), prettyFlag(),
				},
				Action: r.ReviewsUser,
			},
			{
				Name:  "recent",
				Usage: "Show the latest reviews across the catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "skip", Usage: "Reviews to skip"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum reviews", Value: 20},
					jsonFlag(), prettyFlag(),
				},
				Action: r.ReviewsRecent,
			},
			{
				Name:  "create",
				Usage: "Write a review",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "movie", Usage: "Movie ID", Required: true},
					&cli.FloatFlag{Name: "rating", Usage: "Rating from 1 to 10", Required: true},
					&cli.StringFlag{Name: "content", Usage: "Review text"},
				},
				Action: r.ReviewsCreate,
			},
			{
				Name:      "update",
				Usage:     "Change a review",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "rating", Usage: "New rating"},
					&cli.StringFlag{Name: "content", Usage: "New text"},
				},
				Action: r.ReviewsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a review",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ReviewsDelete,
			},
			{
				Name:      "rate",
				Usage:     "Quick-rate a movie with 1 to 10 stars",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie-id"}, &cli.StringArg{Name: "stars"}},
				Action:    r.ReviewsRate,
			},
		},
	}
}

// recommendCommand runs the questionnaire.
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Answer four questions and get movie recommendations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "genre", Usage: "Step 1: main genre"},
			&cli.StringFlag{Name: "subgenre", Usage: "Step 2: second genre or any text"},
			&cli.StringFlag{Name: "detail", Usage: "Step 3: answer to the genre question"},
			&cli.StringFlag{Name: "period", Usage: "Step 4: time period"},
			jsonFlag(), prettyFlag(),
		},
		Action: r.Recommend,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output compact JSON"},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "link", Usage: "Open the catalog at a link such as '/?q=Matrix'"},
			&cli.StringFlag{Name: "log-file", Usage: "Where the TUI writes its log", Value: "./tmp/kino-tui.log"},
		},
		Action: r.TUI,
	}
}
