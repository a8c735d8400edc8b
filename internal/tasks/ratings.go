package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

// ReviewCreator posts reviews.
type ReviewCreator interface {
	CreateReview(ctx context.Context, create models.ReviewCreate) (*models.Review, error)
}

// Ratings is the viewer's star rating per movie plus the single row whose
// star selector is open.
type Ratings struct {
	mu            sync.Mutex
	authenticated bool
	open          int64
	stars         map[int64]int
}

func NewRatings(authenticated bool) *Ratings {
	return &Ratings{authenticated: authenticated, stars: make(map[int64]int)}
}

// Authenticate records whether submissions should reach the API.
func (r *Ratings) Authenticate(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticated = ok
}

// Open shows the selector for movieID, closing any other.
func (r *Ratings) Open(movieID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = movieID
}

// Close hides the selector.
func (r *Ratings) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = 0
}

// IsOpen reports whether the selector of movieID is shown.
func (r *Ratings) IsOpen(movieID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open != 0 && r.open == movieID
}

// Seed fills the map from the viewer's reviews. When a movie was reviewed more
// than once the most recent review wins; ratings are rounded to whole stars.
func (r *Ratings) Seed(reviews []models.Review) {
	latest := make(map[int64]time.Time, len(reviews))

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range reviews {
		at := rv.CreatedAt.Time
		if rv.UpdatedAt != nil && rv.UpdatedAt.After(at) {
			at = rv.UpdatedAt.Time
		}
		if prev, ok := latest[rv.MovieID]; ok && prev.After(at) {
			continue
		}
		latest[rv.MovieID] = at
		r.stars[rv.MovieID] = rv.Stars()
	}
}

// Get returns the local rating of movieID.
func (r *Ratings) Get(movieID int64) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stars[movieID]
	return s, ok
}

// Submit posts a rating-only review. Anonymous viewers are ignored before
// any validation. On success the local rating is overwritten and the
// selector closes.
func (r *Ratings) Submit(ctx context.Context, api ReviewCreator, movieID int64, stars int) error {
	r.mu.Lock()
	authenticated := r.authenticated
	r.mu.Unlock()
	if !authenticated {
		return nil
	}

	if !models.ValidStars(stars) {
		return fmt.Errorf("%w: rating must be between %d and %d, got %d",
			shared.ErrInvalidInput, models.MinStars, models.MaxStars, stars)
	}

	if _, err := api.CreateReview(ctx, models.ReviewCreate{MovieID: movieID, Rating: float64(stars)}); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stars[movieID] = stars
	if r.open == movieID {
		r.open = 0
	}
	return nil
}
