package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/kino/internal/services"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the catalog API with the stored session.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	client, err := r.session()
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)
	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	return r.writeRaw(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}
	client, err := r.session()
	if err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)
	resp, err := client.Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	return r.writeRaw(resp, true)
}

func (r *Runner) writeRaw(resp *services.RawResponse, pretty bool) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	return r.writePlain("%s\n", resp.Body)
}
