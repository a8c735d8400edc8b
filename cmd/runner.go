package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/repositories"
	"github.com/desertthunder/kino/internal/services"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	sessions   *repositories.SessionStore
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.Client
	Sessions   *repositories.SessionStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		sessions:   opts.Sessions,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if r.client == nil {
		r.client = r.newClient()
	}
	return r
}

func (r *Runner) newClient() *services.Client {
	return services.NewClient(services.ClientOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		RateLimit:  r.config.API.RateLimit,
		Logger:     shared.WithLogger(r.logger, "component", "api"),
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, listsCommand, reviewsCommand, recommendCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Init runs before every command: it loads .env, the config file and KINO_*
// overrides, then rebuilds the API client from the result.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if err := shared.LoadEnv(cmd.String("env")); err != nil {
		return ctx, err
	}

	r.configPath = cmd.String("config")
	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if err := r.config.ApplyEnv(); err != nil {
		return ctx, err
	}
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	if t := r.config.API.Timeout(); t > 0 {
		r.httpClient = &http.Client{Timeout: t}
	}
	r.client = r.newClient()
	return ctx, nil
}

// Close releases the local database.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.sessions = nil
	return err
}

// store opens the local database on first use.
func (r *Runner) store() (*repositories.SessionStore, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db
	r.sessions = repositories.NewSessionStore(db)
	return r.sessions, nil
}

// session returns a client carrying the stored access token. A missing token
// yields an anonymous client.
func (r *Runner) session() (*services.Client, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	s, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return r.client.WithSession(s), nil
}

// signedIn is like session but fails when no token is stored.
func (r *Runner) signedIn() (*services.Client, error) {
	client, err := r.session()
	if err != nil {
		return nil, err
	}
	if !client.Session().Authenticated() {
		return nil, fmt.Errorf("%w: run 'kino auth login' first", shared.ErrNotAuthenticated)
	}
	return client, nil
}

// saveSession persists s and switches the runner's client to it.
func (r *Runner) saveSession(s shared.Session) error {
	store, err := r.store()
	if err != nil {
		return err
	}
	if err := store.Save(s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	r.client = r.client.WithSession(s)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// describe turns an API failure into the message a user should see: field
// errors name the field, network failures use the generic message.
func describe(err error) string {
	var fe *models.FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}

	var apiErr *services.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	if apiErr.Network() {
		return services.NetworkErrorMessage
	}
	if len(apiErr.Fields) > 0 {
		parts := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprintf("%s (Status: %d)", apiErr.Message, apiErr.Status)
}

// parseID reads a positive identifier argument.
func parseID(name, value string) (int64, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, value)
	}
	return id, nil
}

// parseIDs reads every positional argument as an identifier.
func parseIDs(name string, values []string) ([]int64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one %s", shared.ErrMissingArgument, name)
	}
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := parseID(name, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
