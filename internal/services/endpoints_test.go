package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
	tu "github.com/desertthunder/kino/internal/testing"
)

func newFake(t *testing.T) (*tu.FakeAPI, *Client) {
	t.Helper()
	api := tu.NewFakeAPI(t)
	api.AddMovies(
		models.Movie{ID: 1, Title: "Матрица", YearRelease: 1999, Genres: models.Genres{"Фантастика"}, KPRating: 8.5},
		models.Movie{ID: 2, Title: "Матрица: Перезагрузка", YearRelease: 2003, Genres: models.Genres{"Фантастика"}},
		models.Movie{ID: 3, Title: "Амели", YearRelease: 2001, Genres: models.Genres{"Комедия"}},
	)
	api.AddUser(7, "neo@example.com", "secret1", "tok-7")
	return api, NewClient(ClientOpts{BaseURL: api.URL()})
}

func TestMovieEndpoints(t *testing.T) {
	api, c := newFake(t)
	ctx := context.Background()

	t.Run("ListMovies sends filters", func(t *testing.T) {
		movies, err := c.ListMovies(ctx, models.PageQuery(models.Filters{Search: "матрица", SortBy: models.SortByYear}, 1, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 1 || movies[0].ID != 1 {
			t.Errorf("unexpected movies %+v", movies)
		}

		calls := api.Calls()
		q, _ := url.ParseQuery(calls[len(calls)-1].Query)
		if q.Get("q") != "матрица" || q.Get("sort_by") != "year" || q.Get("limit") != "1" || q.Get("skip") != "0" {
			t.Errorf("unexpected query %v", q)
		}
	})

	t.Run("GetMovie not found", func(t *testing.T) {
		_, err := c.GetMovie(ctx, 404)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SimilarMovies default limit", func(t *testing.T) {
		if _, err := c.SimilarMovies(ctx, 1, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		calls := api.Calls()
		if calls[len(calls)-1].Query != "limit=10" {
			t.Errorf("expected limit=10, got %s", calls[len(calls)-1].Query)
		}
	})

	t.Run("Recommend sends all answers", func(t *testing.T) {
		movies, err := c.Recommend(ctx, models.RecommendationRequest{MainGenre: "Комедия", Subgenre: "Драма", SubgenreDetail: "Абсурд/Сюр", TimePeriod: "Неважно, хочу сюрприз!"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 1 || movies[0].ID != 3 {
			t.Errorf("unexpected movies %+v", movies)
		}

		calls := api.Calls()
		var body models.RecommendationRequest
		if err := json.Unmarshal(calls[len(calls)-1].Body, &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.Limit != models.DefaultRecommendationLimit || body.SubgenreDetail != "Абсурд/Сюр" {
			t.Errorf("unexpected body %+v", body)
		}
	})
}

func TestUserEndpoints(t *testing.T) {
	api, c := newFake(t)
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		token, err := c.Login(ctx, models.Credentials{Email: "neo@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken == "" || token.User.ID != 7 {
			t.Errorf("unexpected token %+v", token)
		}

		user, err := c.WithSession(shared.NewSession(token.AccessToken)).CurrentUser(ctx)
		if err != nil || user.ID != 7 {
			t.Errorf("CurrentUser() = %+v, %v", user, err)
		}
	})

	t.Run("Login wrong password", func(t *testing.T) {
		_, err := c.Login(ctx, models.Credentials{Email: "neo@example.com", Password: "nope"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Register validates before sending", func(t *testing.T) {
		before := api.CallCount(http.MethodPost, "/users/register")
		_, err := c.Register(ctx, models.Registration{Email: "a@b.c", Username: "a", Password: "secret1", Confirm: "secret2"})
		var fe *models.FieldError
		if !errors.As(err, &fe) || fe.Field != "confirm_password" {
			t.Fatalf("expected confirm_password field error, got %v", err)
		}
		if api.CallCount(http.MethodPost, "/users/register") != before {
			t.Error("invalid registration must not reach the API")
		}
	})

	t.Run("Register duplicate email", func(t *testing.T) {
		_, err := c.Register(ctx, models.Registration{Email: "neo@example.com", Username: "neo", Password: "secret1", Confirm: "secret1"})
		if !errors.Is(err, shared.ErrValidation) || MessageOf(err) != "Email already registered" {
			t.Errorf("expected duplicate email validation error, got %v", err)
		}
	})

	t.Run("Profile and password", func(t *testing.T) {
		authed := c.WithSession(shared.NewSession("tok-7"))
		profile, err := authed.Profile(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if profile.Email != "neo@example.com" || profile.AverageRating != nil {
			t.Errorf("unexpected profile %+v", profile)
		}

		_, err = authed.UpdatePassword(ctx, models.PasswordChange{OldPassword: "secret1", NewPassword: "secret2", Confirm: "secret2"})
		if err != nil {
			t.Fatalf("UpdatePassword: %v", err)
		}
		if _, err := c.Login(ctx, models.Credentials{Email: "neo@example.com", Password: "secret2"}); err != nil {
			t.Errorf("expected new password to work: %v", err)
		}
	})

	t.Run("Forgot and reset", func(t *testing.T) {
		ack, err := c.ForgotPassword(ctx, "neo@example.com")
		if err != nil || ack.Message == "" {
			t.Errorf("ForgotPassword() = %+v, %v", ack, err)
		}
		if _, err := c.ResetPassword(ctx, models.PasswordReset{Token: "t", NewPassword: "123"}); err == nil {
			t.Error("expected short password to be rejected")
		}
	})
}

func TestListEndpoints(t *testing.T) {
	api, anon := newFake(t)
	c := anon.WithSession(shared.NewSession("tok-7"))
	ctx := context.Background()

	t.Run("EnsureWatchlist creates once", func(t *testing.T) {
		first, err := c.EnsureWatchlist(ctx, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := c.EnsureWatchlist(ctx, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("expected the same list, got %d and %d", first.ID, second.ID)
		}
		if n := api.CallCount(http.MethodPost, "/lists/"); n != 1 {
			t.Errorf("expected one create call, got %d", n)
		}
		if first.Description != models.WatchlistDescription {
			t.Errorf("unexpected description %q", first.Description)
		}
	})

	t.Run("EnsureList matches case-insensitively", func(t *testing.T) {
		seeded := api.AddList(7, "ПРОСМОТРЕНО")
		got, err := c.EnsureList(ctx, 7, models.SeenTitle, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != seeded.ID {
			t.Errorf("expected existing list %d, got %d", seeded.ID, got.ID)
		}
	})

	t.Run("EnsureList propagates read failure", func(t *testing.T) {
		api.Fail(http.MethodGet, "/lists/user/7", http.StatusInternalServerError)
		defer api.Recover()
		if _, err := c.EnsureList(ctx, 7, models.FavoritesTitle, ""); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Add and remove movies", func(t *testing.T) {
		l, err := c.CreateList(ctx, models.ListCreate{Title: "Выходные"})
		if err != nil {
			t.Fatalf("CreateList: %v", err)
		}

		updated, err := c.AddMovies(ctx, l.ID, 1, 3)
		if err != nil || updated.MovieCount != 2 {
			t.Fatalf("AddMovies() = %+v, %v", updated, err)
		}

		updated, err = c.RemoveMovies(ctx, l.ID, 1)
		if err != nil || updated.MovieCount != 1 || updated.Movies[0].ID != 3 {
			t.Fatalf("RemoveMovies() = %+v, %v", updated, err)
		}

		calls := api.Calls()
		last := calls[len(calls)-1]
		if last.Method != http.MethodDelete || string(last.Body) != `{"movie_ids":[1]}` {
			t.Errorf("unexpected bulk remove call %+v", last)
		}
	})

	t.Run("AddMovies requires IDs", func(t *testing.T) {
		if _, err := c.AddMovies(ctx, 1); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Update and delete", func(t *testing.T) {
		l, _ := c.CreateList(ctx, models.ListCreate{Title: "Черновик"})
		title := "Чистовик"
		updated, err := c.UpdateList(ctx, l.ID, models.ListUpdate{Title: &title})
		if err != nil || updated.Title != title {
			t.Fatalf("UpdateList() = %+v, %v", updated, err)
		}
		if err := c.DeleteList(ctx, l.ID); err != nil {
			t.Fatalf("DeleteList: %v", err)
		}
		if _, err := c.GetList(ctx, l.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Anonymous create is unauthorized", func(t *testing.T) {
		if _, err := anon.CreateList(ctx, models.ListCreate{Title: "x"}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestReviewEndpoints(t *testing.T) {
	api, anon := newFake(t)
	c := anon.WithSession(shared.NewSession("tok-7"))
	ctx := context.Background()

	created, err := c.CreateReview(ctx, models.ReviewCreate{MovieID: 1, Rating: 9})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	t.Run("Listings", func(t *testing.T) {
		byMovie, err := c.MovieReviews(ctx, 1)
		if err != nil || len(byMovie) != 1 {
			t.Errorf("MovieReviews() = %v, %v", byMovie, err)
		}
		byUser, err := c.UserReviews(ctx, 7, 0, 0)
		if err != nil || len(byUser) != 1 {
			t.Errorf("UserReviews() = %v, %v", byUser, err)
		}
		calls := api.Calls()
		if calls[len(calls)-1].Query != "limit=50&skip=0" {
			t.Errorf("unexpected paging query %s", calls[len(calls)-1].Query)
		}
		all, err := c.Reviews(ctx, 0, 10)
		if err != nil || len(all) != 1 {
			t.Errorf("Reviews() = %v, %v", all, err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		content := "Шедевр"
		updated, err := c.UpdateReview(ctx, created.ID, models.ReviewUpdate{Content: &content})
		if err != nil || updated.Content != content || updated.Rating != 9 {
			t.Errorf("UpdateReview() = %+v, %v", updated, err)
		}
	})

	t.Run("Invalid rating is rejected locally", func(t *testing.T) {
		if _, err := c.CreateReview(ctx, models.ReviewCreate{MovieID: 1, Rating: 12}); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := c.DeleteReview(ctx, created.ID); err != nil {
			t.Fatalf("DeleteReview: %v", err)
		}
		if err := c.DeleteReview(ctx, created.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}
