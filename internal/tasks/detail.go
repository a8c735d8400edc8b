package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/models"
)

const detailErrorMessage = "Не удалось загрузить данные фильма. Проверьте соединение и бэкенд"

// DetailAPI is what the movie page reads.
type DetailAPI interface {
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	SimilarMovies(ctx context.Context, id int64, limit int) ([]models.Movie, error)
	MovieReviews(ctx context.Context, movieID int64) ([]models.Review, error)
}

// MovieDetail is everything shown on a movie page.
type MovieDetail struct {
	Movie   *models.Movie
	Similar []models.Movie
	Reviews []models.Review
}

// LoadDetail fetches the movie, its similar movies and its reviews
// concurrently. Only the movie is required: its failure is returned as a
// [*PageError], while failed auxiliary fetches leave empty slices.
func LoadDetail(ctx context.Context, api DetailAPI, id int64, similarLimit int, logger *log.Logger) (*MovieDetail, error) {
	var (
		wg      sync.WaitGroup
		movie   *models.Movie
		movErr  error
		similar []models.Movie
		reviews []models.Review
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		movie, movErr = api.GetMovie(ctx, id)
	}()
	go func() {
		defer wg.Done()
		var err error
		if similar, err = api.SimilarMovies(ctx, id, similarLimit); err != nil {
			similar = nil
			warn(logger, "similar movies unavailable", "movie_id", id, "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if reviews, err = api.MovieReviews(ctx, id); err != nil {
			reviews = nil
			warn(logger, "movie reviews unavailable", "movie_id", id, "error", err)
		}
	}()
	wg.Wait()

	if movErr != nil {
		return nil, newPageError(movErr, fmt.Sprintf("Фильм с ID %d не найден.", id), detailErrorMessage)
	}
	if similar == nil {
		similar = []models.Movie{}
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &MovieDetail{Movie: movie, Similar: similar, Reviews: reviews}, nil
}

func warn(logger *log.Logger, msg string, keyvals ...any) {
	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}
