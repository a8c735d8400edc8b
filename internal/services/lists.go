package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

// UserLists returns every list owned by userID.
func (c *Client) UserLists(ctx context.Context, userID int64) ([]models.List, error) {
	var lists []models.List
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/lists/user/%d", userID), nil, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// GetList returns a list with its movies.
func (c *Client) GetList(ctx context.Context, id int64) (*models.List, error) {
	var list models.List
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/lists/%d", id), nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateList creates a list owned by the session user.
func (c *Client) CreateList(ctx context.Context, create models.ListCreate) (*models.List, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}

	var list models.List
	if err := c.doRequest(ctx, http.MethodPost, "/lists/", nil, create, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateList renames or re-describes a list.
func (c *Client) UpdateList(ctx context.Context, id int64, update models.ListUpdate) (*models.List, error) {
	var list models.List
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/lists/%d", id), nil, update, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteList removes a list.
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/lists/%d", id), nil, nil, nil)
}

// AddMovies adds movieIDs to a list and returns the updated list.
func (c *Client) AddMovies(ctx context.Context, listID int64, movieIDs ...int64) (*models.List, error) {
	return c.changeMovies(ctx, http.MethodPost, listID, movieIDs)
}

// RemoveMovies removes movieIDs from a list and returns the updated list.
func (c *Client) RemoveMovies(ctx context.Context, listID int64, movieIDs ...int64) (*models.List, error) {
	return c.changeMovies(ctx, http.MethodDelete, listID, movieIDs)
}

func (c *Client) changeMovies(ctx context.Context, method string, listID int64, movieIDs []int64) (*models.List, error) {
	if len(movieIDs) == 0 {
		return nil, fmt.Errorf("%w: no movie IDs provided", shared.ErrMissingArgument)
	}

	var list models.List
	body := models.MovieIDsBody{MovieIDs: movieIDs}
	if err := c.doRequest(ctx, method, fmt.Sprintf("/lists/%d/movies", listID), nil, body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// EnsureList returns the user's list titled title (case-insensitive), creating
// it when absent. The read and the create are separate calls, so two racing
// callers can both create the list.
func (c *Client) EnsureList(ctx context.Context, userID int64, title, description string) (*models.List, error) {
	lists, err := c.UserLists(ctx, userID)
	if err != nil {
		return nil, err
	}

	if existing, ok := models.FindList(lists, title); ok {
		return &existing, nil
	}

	c.logger.Debug("creating reserved list", "user_id", userID, "title", title)
	return c.CreateList(ctx, models.ListCreate{Title: title, Description: description})
}

// EnsureWatchlist is [Client.EnsureList] for the watchlist.
func (c *Client) EnsureWatchlist(ctx context.Context, userID int64) (*models.List, error) {
	return c.EnsureList(ctx, userID, models.WatchlistTitle, models.WatchlistDescription)
}
