package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/kino/internal/models"
)

// DefaultSimilarLimit is the number of similar movies requested for a detail page.
const DefaultSimilarLimit = 10

// ListMovies fetches one catalog page.
func (c *Client) ListMovies(ctx context.Context, q models.MovieQuery) ([]models.Movie, error) {
	var movies []models.Movie
	if err := c.doRequest(ctx, http.MethodGet, "/movies/top", q.Values(), nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetMovie fetches a single movie.
func (c *Client) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/movies/%d", id), nil, nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// SimilarMovies fetches movies related to id. A non-positive limit uses [DefaultSimilarLimit].
func (c *Client) SimilarMovies(ctx context.Context, id int64, limit int) ([]models.Movie, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var movies []models.Movie
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/movies/%d/similar", id), query, nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Recommend submits questionnaire answers.
func (c *Client) Recommend(ctx context.Context, req models.RecommendationRequest) ([]models.Movie, error) {
	if req.Limit <= 0 {
		req.Limit = models.DefaultRecommendationLimit
	}

	var movies []models.Movie
	if err := c.doRequest(ctx, http.MethodPost, "/movies/recommend", nil, req, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}
