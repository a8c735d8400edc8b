package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/server"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 3 * time.Minute

// AuthLogin exchanges email and password for a token and stores it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{Email: cmd.String("email"), Password: cmd.String("password")}

	r.logger.Info("signing in", "email", creds.Email)
	token, err := r.client.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, describe(err))
	}

	if err := r.saveSession(shared.NewSession(token.AccessToken)); err != nil {
		return err
	}
	return r.writePlain("✓ Signed in as %s\n", token.User.Username)
}

// AuthRegister creates an account, then signs in with it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	reg := models.Registration{
		Email:    cmd.String("email"),
		Username: cmd.String("username"),
		Password: cmd.String("password"),
		Confirm:  cmd.String("confirm"),
	}

	user, err := r.client.Register(ctx, reg)
	if err != nil {
		return fmt.Errorf("registration failed: %s", describe(err))
	}
	r.logger.Info("account created", "user_id", user.ID)

	token, err := r.client.Login(ctx, models.Credentials{Email: reg.Email, Password: reg.Password})
	if err != nil {
		return fmt.Errorf("%w: account created but sign in failed: %s", shared.ErrAuthFailed, describe(err))
	}
	if err := r.saveSession(shared.NewSession(token.AccessToken)); err != nil {
		return err
	}
	return r.writePlain("✓ Account %s created and signed in\n", user.Username)
}

// AuthLogout forgets the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.saveSession(shared.Anonymous()); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus resolves the stored token to a user. An invalid or missing token
// is reported as signed out rather than an error.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	client, err := r.session()
	if err != nil {
		return err
	}
	r.writePlain("API: %s\n", client.BaseURL())

	if !client.Session().Authenticated() {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}

	user, err := client.CurrentUser(ctx)
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return r.writePlain("Authentication: ✗ Stored token was rejected; sign in again\n")
	case err != nil:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	r.writePlain("User: %s <%s> (id %d, %s)\n", user.Username, user.Email, user.ID, user.Role)
	return nil
}

// AuthProfile prints the extended profile.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	profile, err := client.Profile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlainHeader(profile.Username)
	r.writePlain("Email: %s\n", profile.Email)
	r.writePlain("Reviews: %d\n", profile.ReviewsCount)
	r.writePlain("Lists: %d\n", profile.ListsCount)
	if profile.AverageRating != nil {
		r.writePlain("Average rating: %.1f\n", *profile.AverageRating)
	}
	if len(profile.FavoriteGenres) > 0 {
		r.writePlainln("Favourite genres:")
		for _, g := range profile.FavoriteGenres {
			r.writePlain("  %s (%d)\n", g.Genre, g.Count)
		}
	}
	if len(profile.RecentWatchedMovies) > 0 {
		r.writePlainln("Recently watched:")
		for i, m := range profile.RecentWatchedMovies {
			r.writePlain("%s\n", formatter.MovieRow(i+1, m))
		}
	}
	return nil
}

// AuthPassword changes the password of the signed-in user.
func (r *Runner) AuthPassword(ctx context.Context, cmd *cli.Command) error {
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	change := models.PasswordChange{
		OldPassword: cmd.String("old"),
		NewPassword: cmd.String("new"),
		Confirm:     cmd.String("confirm"),
	}
	if _, err := client.UpdatePassword(ctx, change); err != nil {
		return fmt.Errorf("password change failed: %s", describe(err))
	}
	return r.writePlain("✓ Password changed\n")
}

// AuthForgot requests a reset email.
func (r *Runner) AuthForgot(ctx context.Context, cmd *cli.Command) error {
	ack, err := r.client.ForgotPassword(ctx, cmd.String("email"))
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	if ack.Message != "" {
		return r.writePlain("✓ %s\n", ack.Message)
	}
	return r.writePlain("✓ Check your inbox for the reset link\n")
}

// AuthReset completes a password reset.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	reset := models.PasswordReset{Token: cmd.String("token"), NewPassword: cmd.String("password")}
	if _, err := r.client.ResetPassword(ctx, reset); err != nil {
		return fmt.Errorf("password reset failed: %s", describe(err))
	}
	return r.writePlain("✓ Password updated; sign in with 'kino auth login'\n")
}

// AuthYandex runs the browser login. The backend must redirect to this
// machine, so its FRONTEND_URL has to point at the callback address.
func (r *Runner) AuthYandex(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.API.CallbackAddr
	}

	loginURL, err := server.YandexLoginURL(r.client.BaseURL())
	if err != nil {
		return err
	}

	srv, err := server.NewCallbackServer(addr, shared.WithLogger(r.logger, "component", "callback"))
	if err != nil {
		return err
	}
	srv.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("callback server shutdown failed", "error", err)
		}
	}()

	r.writePlain("Waiting for the browser login on %s/login\n", srv.URL())
	if cmd.Bool("no-browser") {
		r.writePlain("Open %s\n", loginURL)
	} else if err := shared.OpenBrowser(loginURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
		r.writePlain("Open %s\n", loginURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	token, err := srv.Wait(waitCtx)
	if err != nil {
		return err
	}
	if err := r.saveSession(shared.NewSession(token)); err != nil {
		return err
	}

	user, err := r.client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: token stored but could not be verified: %s", shared.ErrAuthFailed, describe(err))
	}
	return r.writePlain("✓ Signed in as %s\n", user.Username)
}

// AuthImport stores the bearer token found in a request copied from the browser.
// When the request targets a different API root the config is not changed; a warning is logged.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var (
		req *shared.CurlRequest
		err error
	)
	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
	} else {
		req, err = shared.ParseCurlCommand([]byte(curlCmd))
	}
	if err != nil {
		return fmt.Errorf("failed to parse cURL command: %w", err)
	}

	token, err := req.BearerToken()
	if err != nil {
		return err
	}
	if base, err := req.BaseURL(); err == nil && base != r.client.BaseURL() {
		r.logger.Warn("request targets a different API", "request", base, "configured", r.client.BaseURL())
	}

	if err := r.saveSession(shared.NewSession(token)); err != nil {
		return err
	}
	user, err := r.client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: imported token was rejected: %s", shared.ErrAuthFailed, describe(err))
	}
	return r.writePlain("✓ Token imported; signed in as %s\n", user.Username)
}
