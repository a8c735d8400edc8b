package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/desertthunder/kino/internal/tasks"
	"github.com/urfave/cli/v3"
)

// reviewLine renders a review as one line: id, stars, movie and text.
func reviewLine(rv models.Review) string {
	line := fmt.Sprintf("#%d  ★ %s  movie %d", rv.ID, strconv.FormatFloat(rv.Rating, 'f', 1, 64), rv.MovieID)
	if content := strings.TrimSpace(rv.Content); content != "" {
		line += "  " + formatter.Truncate(content, 80)
	}
	return line
}

func (r *Runner) writeReviews(cmd *cli.Command, title string, reviews []models.Review) error {
	if cmd.Bool("json") {
		return r.writeJSON(reviews, cmd.Bool("pretty"))
	}
	r.writePlainHeader(title)
	if len(reviews) == 0 {
		return r.writePlain("Отзывов пока нет\n")
	}
	for _, rv := range reviews {
		r.writePlain("%s\n", reviewLine(rv))
	}
	return nil
}

// ReviewsMovie prints the reviews of a movie.
func (r *Runner) ReviewsMovie(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	reviews, err := r.client.MovieReviews(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	return r.writeReviews(cmd, fmt.Sprintf("Отзывы о фильме %d", id), reviews)
}

// ReviewsRecent prints a page of all reviews.
func (r *Runner) ReviewsRecent(ctx context.Context, cmd *cli.Command) error {
	reviews, err := r.client.Reviews(ctx, cmd.Int("skip"), cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	return r.writeReviews(cmd, "Последние отзывы", reviews)
}

// ReviewsUser prints a user's reviews, the signed-in user's when --id is omitted.
func (r *Runner) ReviewsUser(ctx context.Context, cmd *cli.Command) error {
	client, err := r.session()
	if err != nil {
		return err
	}

	var userID int64
	if cmd.IsSet("id") {
		if userID, err = parseID("id", cmd.String("id")); err != nil {
			return err
		}
	} else {
		if !client.Session().Authenticated() {
			return fmt.Errorf("%w: pass --id or sign in", shared.ErrMissingArgument)
		}
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
		}
		userID = user.ID
	}

	reviews, err := client.UserReviews(ctx, userID, cmd.Int("skip"), cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, describe(err))
	}
	return r.writeReviews(cmd, fmt.Sprintf("Отзывы пользователя %d", userID), reviews)
}

// ReviewsCreate writes a review.
func (r *Runner) ReviewsCreate(ctx context.Context, cmd *cli.Command) error {
	movieID, err := parseID("movie", cmd.String("movie"))
	if err != nil {
		return err
	}
	client, err := r.signedIn()
	if err != nil {
		return err
	}

	review, err := client.CreateReview(ctx, models.ReviewCreate{
		MovieID: movieID,
		Rating:  cmd.Float("rating"),
		Content: cmd.String("content"),
	})
	if err != nil {
		return fmt.Errorf("failed to create review: %s", describe(err))
	}
	return r.writePlain("✓ Review saved\n%s\n", reviewLine(*review))
}

// ReviewsUpdate changes the rating or text of a review.
func (r *Runner) ReviewsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	var update models.ReviewUpdate
	if cmd.IsSet("rating") {
		rating := cmd.Float("rating")
		update.Rating = &rating
	}
	if cmd.IsSet("content") {
		content := cmd.String("content")
		update.Content = &content
	}
	if update.Rating == nil && update.Content == nil {
		return fmt.Errorf("%w: --rating or --content", shared.ErrMissingArgument)
	}

	client, err := r.signedIn()
	if err != nil {
		return err
	}
	review, err := client.UpdateReview(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %s", describe(err))
	}
	return r.writePlain("✓ Review updated\n%s\n", reviewLine(*review))
}

// ReviewsDelete deletes a review.
func (r *Runner) ReviewsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	client, err := r.signedIn()
	if err != nil {
		return err
	}
	if err := client.DeleteReview(ctx, id); err != nil {
		return fmt.Errorf("failed to delete review: %s", describe(err))
	}
	return r.writePlain("✓ Deleted review %d\n", id)
}

// ReviewsRate submits a rating-only review of 1 to 10 stars.
func (r *Runner) ReviewsRate(ctx context.Context, cmd *cli.Command) error {
	movieID, err := parseID("movie-id", cmd.StringArg("movie-id"))
	if err != nil {
		return err
	}
	raw := cmd.StringArg("stars")
	if raw == "" {
		return fmt.Errorf("%w: stars", shared.ErrMissingArgument)
	}
	stars, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: stars must be a whole number, got %q", shared.ErrInvalidArgument, raw)
	}

	client, err := r.signedIn()
	if err != nil {
		return err
	}
	if err := tasks.NewRatings(true).Submit(ctx, client, movieID, stars); err != nil {
		return fmt.Errorf("failed to rate movie: %s", describe(err))
	}
	return r.writePlain("✓ Rated movie %d: %s\n", movieID, strings.Repeat("★", stars))
}
