package tasks

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

func TestRatings(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous submit is a no-op", func(t *testing.T) {
		api, client, _ := newFake(t, 1)
		r := NewRatings(false)
		r.Open(1)

		if err := r.Submit(ctx, client, 1, 8); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := api.CallCount(http.MethodPost, "/reviews/"); n != 0 {
			t.Errorf("expected no request, got %d", n)
		}
		if _, ok := r.Get(1); ok {
			t.Error("rating should not be stored")
		}
	})

	t.Run("anonymous submit ignores out of range stars", func(t *testing.T) {
		api, client, _ := newFake(t, 1)
		r := NewRatings(false)
		for _, stars := range []int{0, 11} {
			if err := r.Submit(ctx, client, 1, stars); err != nil {
				t.Errorf("stars %d: expected no error, got %v", stars, err)
			}
		}
		if n := api.CallCount(http.MethodPost, "/reviews/"); n != 0 {
			t.Errorf("expected no request, got %d", n)
		}
	})

	t.Run("out of range stars are rejected before any call", func(t *testing.T) {
		api, _, client := newFake(t, 1)
		r := NewRatings(true)
		for _, stars := range []int{0, 11, -3} {
			if err := r.Submit(ctx, client, 1, stars); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("stars %d: expected ErrInvalidInput, got %v", stars, err)
			}
		}
		if n := api.CallCount(http.MethodPost, "/reviews/"); n != 0 {
			t.Errorf("expected no request, got %d", n)
		}
	})

	t.Run("submit stores the rating and closes the selector", func(t *testing.T) {
		api, _, client := newFake(t, 1)
		r := NewRatings(false)
		r.Authenticate(true)
		r.Open(1)

		if err := r.Submit(ctx, client, 1, 8); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if stars, ok := r.Get(1); !ok || stars != 8 {
			t.Errorf("Get(1) = %d, %v", stars, ok)
		}
		if r.IsOpen(1) {
			t.Error("selector should close")
		}

		reviews := api.ReviewsOf(viewerID)
		if len(reviews) != 1 || reviews[0].Rating != 8 || reviews[0].Content != "" {
			t.Errorf("unexpected reviews %+v", reviews)
		}

		if err := r.Submit(ctx, client, 1, 3); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if stars, _ := r.Get(1); stars != 3 {
			t.Errorf("later rating should overwrite, got %d", stars)
		}
	})

	t.Run("failed submit keeps state", func(t *testing.T) {
		api, _, client := newFake(t, 1)
		api.Fail(http.MethodPost, "/reviews/", http.StatusInternalServerError)
		r := NewRatings(true)
		r.Open(1)

		if err := r.Submit(ctx, client, 1, 8); err == nil {
			t.Fatal("expected error")
		}
		if _, ok := r.Get(1); ok {
			t.Error("rating should not be stored")
		}
		if !r.IsOpen(1) {
			t.Error("selector should stay open")
		}
	})

	t.Run("only one selector is open", func(t *testing.T) {
		r := NewRatings(true)
		r.Open(1)
		r.Open(2)
		if r.IsOpen(1) || !r.IsOpen(2) {
			t.Error("opening a row should close the other")
		}
		r.Close()
		if r.IsOpen(2) {
			t.Error("Close should hide the selector")
		}
	})

	t.Run("seed keeps the latest review", func(t *testing.T) {
		at := func(day int) models.Timestamp {
			return models.Timestamp{Time: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)}
		}
		r := NewRatings(true)
		r.Seed([]models.Review{
			{MovieID: 1, Rating: 7.6, CreatedAt: at(5)},
			{MovieID: 1, Rating: 3, CreatedAt: at(1)},
			{MovieID: 2, Rating: 4.4, CreatedAt: at(1)},
		})

		if stars, _ := r.Get(1); stars != 8 {
			t.Errorf("movie 1 = %d, want 8", stars)
		}
		if stars, _ := r.Get(2); stars != 4 {
			t.Errorf("movie 2 = %d, want 4", stars)
		}
	})
}
