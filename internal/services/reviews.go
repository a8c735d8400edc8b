package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/kino/internal/models"
)

// DefaultReviewPageSize is the page size used for review listings.
const DefaultReviewPageSize = 50

func pageValues(skip, limit int) url.Values {
	if limit <= 0 {
		limit = DefaultReviewPageSize
	}
	return url.Values{"skip": {strconv.Itoa(max(skip, 0))}, "limit": {strconv.Itoa(limit)}}
}

// Reviews lists recent reviews across all movies.
func (c *Client) Reviews(ctx context.Context, skip, limit int) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.doRequest(ctx, http.MethodGet, "/reviews/", pageValues(skip, limit), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// MovieReviews lists reviews of a movie.
func (c *Client) MovieReviews(ctx context.Context, movieID int64) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/reviews/movie/%d", movieID), nil, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// UserReviews lists reviews written by userID.
func (c *Client) UserReviews(ctx context.Context, userID int64, skip, limit int) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/reviews/user/%d", userID), pageValues(skip, limit), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview posts a review for the session user.
func (c *Client) CreateReview(ctx context.Context, create models.ReviewCreate) (*models.Review, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}

	var review models.Review
	if err := c.doRequest(ctx, http.MethodPost, "/reviews/", nil, create, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview edits a review.
func (c *Client) UpdateReview(ctx context.Context, id int64, update models.ReviewUpdate) (*models.Review, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var review models.Review
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/reviews/%d", id), nil, update, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/reviews/%d", id), nil, nil, nil)
}
