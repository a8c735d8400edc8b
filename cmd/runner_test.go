package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/repositories"
	"github.com/desertthunder/kino/internal/services"
	"github.com/desertthunder/kino/internal/shared"
	tu "github.com/desertthunder/kino/internal/testing"
	"github.com/urfave/cli/v3"
)

const (
	testUserID = 1
	testToken  = "token-neo"
)

// newTestRunner wires a runner to a fake API and a throwaway database.
func newTestRunner(t *testing.T) (*Runner, *tu.FakeAPI, *bytes.Buffer) {
	t.Helper()

	api := tu.NewFakeAPI(t)
	api.AddUser(testUserID, "neo@example.com", "secret1", testToken)
	for i := 1; i <= 3; i++ {
		api.AddMovies(models.Movie{
			ID:          int64(i),
			Title:       fmt.Sprintf("Фильм %d", i),
			YearRelease: 2000 + i,
			Genres:      models.Genres{"Комедия"},
			KPRating:    7,
		})
	}

	config := shared.DefaultConfig()
	config.API.BaseURL = api.URL()
	config.Database.Path = filepath.Join(t.TempDir(), "kino.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Config: config, Output: output, HTTPClient: api.Server.Client()})
	t.Cleanup(func() { runner.Close(context.Background(), nil) })
	return runner, api, output
}

func signIn(t *testing.T, r *Runner) {
	t.Helper()
	if err := r.saveSession(shared.NewSession(testToken)); err != nil {
		t.Fatalf("saveSession: %v", err)
	}
}

func runCommand(r *Runner, args ...string) error {
	root := &cli.Command{
		Name:      "kino",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return root.Run(context.Background(), append([]string{"kino"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			client := services.NewClient(services.ClientOpts{})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Client:     client,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.client == nil {
				t.Fatal("expected a client built from the config")
			}
			if runner.client.BaseURL() != shared.DefaultConfig().API.BaseURL {
				t.Errorf("unexpected base URL %q", runner.client.BaseURL())
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "movies", "lists", "reviews", "recommend", "api", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("command %d = %q, want %q", i, cmd.Name, want[i])
			}
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("parseID", func(t *testing.T) {
		tests := []struct {
			value   string
			want    int64
			wantErr error
		}{
			{"42", 42, nil},
			{"", 0, shared.ErrMissingArgument},
			{"0", 0, shared.ErrInvalidArgument},
			{"-3", 0, shared.ErrInvalidArgument},
			{"abc", 0, shared.ErrInvalidArgument},
		}
		for _, tt := range tests {
			t.Run(tt.value, func(t *testing.T) {
				got, err := parseID("id", tt.value)
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseID(%q) error = %v, want %v", tt.value, err, tt.wantErr)
				}
				if got != tt.want {
					t.Errorf("parseID(%q) = %d, want %d", tt.value, got, tt.want)
				}
			})
		}
	})

	t.Run("parseIDs stops at the first bad value", func(t *testing.T) {
		if _, err := parseIDs("movie id", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := parseIDs("movie id", []string{"1", "x"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		ids, err := parseIDs("movie id", []string{"3", "1"})
		if err != nil || len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
			t.Errorf("parseIDs = %v, %v", ids, err)
		}
	})

	t.Run("describe", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want string
		}{
			{"field error", &models.FieldError{Field: "email", Message: "invalid address"}, "email: invalid address"},
			{"status", &services.APIError{Status: 404, Message: "Movie not found"}, "Movie not found (Status: 404)"},
			{
				"field issues",
				&services.APIError{Status: 422, Fields: []services.FieldIssue{{Field: "rating", Message: "too high"}, {Field: "movie_id", Message: "required"}}},
				"rating: too high; movie_id: required",
			},
			{"plain", errors.New("boom"), "boom"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := describe(tt.err); got != tt.want {
					t.Errorf("describe() = %q, want %q", got, tt.want)
				}
			})
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("auth login stores the session", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := runCommand(runner, "auth", "login", "--email", "neo@example.com", "--password", "secret1"); err != nil {
			t.Fatalf("login: %v", err)
		}
		if !strings.Contains(output.String(), "Signed in as neo") {
			t.Errorf("unexpected output %q", output.String())
		}

		store, err := runner.store()
		if err != nil {
			t.Fatal(err)
		}
		s, err := store.Load()
		if err != nil || !s.Authenticated() {
			t.Errorf("expected stored session, got %+v %v", s, err)
		}
	})

	t.Run("lists require a session", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := runCommand(runner, "lists", "ls")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("lists ls creates the watchlist", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		signIn(t, runner)

		if err := runCommand(runner, "lists", "ls"); err != nil {
			t.Fatalf("lists ls: %v", err)
		}
		lists := api.ListsOf(testUserID)
		if len(lists) != 1 || lists[0].Title != models.WatchlistTitle {
			t.Fatalf("expected watchlist to be created, got %+v", lists)
		}
		if !strings.Contains(output.String(), models.WatchlistTitle) {
			t.Errorf("watchlist missing from output %q", output.String())
		}
	})

	t.Run("lists watch toggles membership", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		signIn(t, runner)

		if err := runCommand(runner, "lists", "watch", "2"); err != nil {
			t.Fatalf("watch: %v", err)
		}
		lists := api.ListsOf(testUserID)
		if len(lists) != 1 {
			t.Fatalf("expected one list, got %d", len(lists))
		}
		list, _ := api.List(lists[0].ID)
		if ids := list.MovieIDs(); len(ids) != 1 || ids[0] != 2 {
			t.Errorf("expected movie 2 in watchlist, got %v", ids)
		}

		if err := runCommand(runner, "lists", "watch", "2"); err != nil {
			t.Fatalf("second watch: %v", err)
		}
		list, _ = api.List(lists[0].ID)
		if len(list.MovieIDs()) != 0 {
			t.Errorf("expected movie removed, got %v", list.MovieIDs())
		}

		out := output.String()
		if !strings.Contains(out, "Added to") || !strings.Contains(out, "Removed from") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("reserved lists cannot be deleted", func(t *testing.T) {
		runner, api, _ := newTestRunner(t)
		signIn(t, runner)
		list := api.AddList(testUserID, models.SeenTitle, 1)

		err := runCommand(runner, "lists", "delete", formatID(list.ID))
		if !errors.Is(err, shared.ErrProtectedList) {
			t.Errorf("expected ErrProtectedList, got %v", err)
		}
		if _, ok := api.List(list.ID); !ok {
			t.Error("protected list was deleted")
		}
	})

	t.Run("lists export records the run", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		list := api.AddList(testUserID, "Вечер пятницы", 1, 3)
		dir := t.TempDir()

		err := runCommand(runner, "lists", "export", "--format", "csv", "--output", dir, formatID(list.ID))
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if !strings.Contains(output.String(), "1 of 1 lists exported") {
			t.Errorf("unexpected output %q", output.String())
		}

		runs, err := repositories.NewExportRunRepository(runner.db).Recent(5)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Errorf("expected one recorded run, got %d", len(runs))
		}
	})

	t.Run("movies list pages with ranks", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := runCommand(runner, "movies", "list", "--page-size", "2", "--page", "2"); err != nil {
			t.Fatalf("movies list: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "3.") || !strings.Contains(out, "Фильм 3") {
			t.Errorf("expected rank 3 on page 2, got %q", out)
		}
		if !strings.Contains(out, "--page 1") {
			t.Errorf("expected previous page hint, got %q", out)
		}
	})

	t.Run("reviews rate rejects out of range stars", func(t *testing.T) {
		runner, api, _ := newTestRunner(t)
		signIn(t, runner)

		err := runCommand(runner, "reviews", "rate", "1", "11")
		if err == nil || !strings.Contains(err.Error(), "rating must be between") {
			t.Errorf("expected range error, got %v", err)
		}
		if n := api.CallCount(http.MethodPost, "/reviews/"); n != 0 {
			t.Errorf("expected no review request, got %d", n)
		}

		if err := runCommand(runner, "reviews", "rate", "1", "8"); err != nil {
			t.Fatalf("rate: %v", err)
		}
		reviews := api.ReviewsOf(testUserID)
		if len(reviews) != 1 || reviews[0].Rating != 8 {
			t.Errorf("unexpected reviews %+v", reviews)
		}
	})

	t.Run("recommend prints the first unanswered question", func(t *testing.T) {
		runner, api, output := newTestRunner(t)

		err := runCommand(runner, "recommend", "--genre", "Комедия")
		if !errors.Is(err, shared.ErrMissingArgument) || !strings.Contains(err.Error(), "--subgenre") {
			t.Errorf("expected missing --subgenre, got %v", err)
		}
		if !strings.Contains(output.String(), "Выберите поджанр:") {
			t.Errorf("expected subgenre prompt, got %q", output.String())
		}
		if n := api.CallCount(http.MethodPost, "/movies/recommend"); n != 0 {
			t.Errorf("expected no recommendation request, got %d", n)
		}
	})

	t.Run("recommend sends one request", func(t *testing.T) {
		runner, api, output := newTestRunner(t)

		err := runCommand(runner, "recommend",
			"--genre", "Комедия",
			"--subgenre", "Драма",
			"--detail", "Пародия/Мемы",
			"--period", "Неважно, хочу сюрприз!",
		)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if n := api.CallCount(http.MethodPost, "/movies/recommend"); n != 1 {
			t.Errorf("expected one recommendation request, got %d", n)
		}
		if !strings.Contains(output.String(), "Фильм 1") {
			t.Errorf("expected results, got %q", output.String())
		}
	})

	t.Run("reviews recent lists every author", func(t *testing.T) {
		runner, api, output := newTestRunner(t)
		api.AddReview(models.Review{AuthorID: testUserID, MovieID: 2, Rating: 9, Content: "Шедевр"})

		if err := runCommand(runner, "reviews", "recent"); err != nil {
			t.Fatalf("reviews recent: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "Шедевр") || !strings.Contains(out, "movie 2") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("setup database rollback reverts the last migration", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := runCommand(runner, "setup", "database"); err != nil {
			t.Fatalf("setup database: %v", err)
		}
		if !strings.Contains(output.String(), "schema version 1") {
			t.Fatalf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := runCommand(runner, "setup", "database", "--rollback"); err != nil {
			t.Fatalf("setup database --rollback: %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") || !strings.Contains(output.String(), "schema version 0") {
			t.Errorf("unexpected output %q", output.String())
		}

		db, err := shared.OpenDatabase(runner.config.Database)
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		if version, err := shared.CurrentVersion(db); err != nil || version != 0 {
			t.Errorf("CurrentVersion() = %d, %v", version, err)
		}
	})

	t.Run("setup database rollback fails with nothing applied", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		if err := runCommand(runner, "setup", "database"); err != nil {
			t.Fatalf("setup database: %v", err)
		}
		for range 2 {
			if err := runCommand(runner, "setup", "database", "--rollback"); err != nil {
				t.Fatalf("rollback: %v", err)
			}
		}
		if err := runCommand(runner, "setup", "database", "--rollback"); err == nil {
			t.Error("expected error once every migration is reverted")
		}
	})

	t.Run("api get prints raw JSON", func(t *testing.T) {
		runner, _, output := newTestRunner(t)

		if err := runCommand(runner, "api", "get", "--json", "/movies/2"); err != nil {
			t.Fatalf("api get: %v", err)
		}
		if !strings.Contains(output.String(), `"title":"Фильм 2"`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("api post rejects invalid JSON", func(t *testing.T) {
		runner, _, _ := newTestRunner(t)

		err := runCommand(runner, "api", "post", "--data", "{nope", "/reviews/")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
