package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

const recommendPath = "/movies/recommend"

func TestQuestionnaire(t *testing.T) {
	ctx := context.Background()

	t.Run("every main genre has a follow-up", func(t *testing.T) {
		for _, g := range DefaultQuestions.MainGenres {
			if _, ok := DefaultQuestions.FollowUps[g]; !ok {
				t.Errorf("missing follow-up for %q", g)
			}
		}
		if len(DefaultQuestions.MainGenres) != 15 || len(DefaultQuestions.Periods) != 4 {
			t.Error("unexpected question set size")
		}
	})

	t.Run("step 2 excludes the main genre", func(t *testing.T) {
		_, client, _ := newFake(t, 0)
		q := NewQuestionnaire(nil)
		if err := q.Choose(ctx, client, "Комедия"); err != nil {
			t.Fatalf("Choose: %v", err)
		}

		question, err := q.Question()
		if err != nil {
			t.Fatal(err)
		}
		if question.Step != StepSubgenre || !question.FreeForm {
			t.Errorf("unexpected question %+v", question)
		}
		if slices.Contains(question.Options, "Комедия") {
			t.Error("main genre offered as subgenre")
		}
		if !slices.Contains(question.Options, OtherOption) {
			t.Error("missing the other option")
		}
		if len(question.Options) != len(DefaultQuestions.MainGenres) {
			t.Errorf("got %d options", len(question.Options))
		}
	})

	t.Run("four answers issue exactly one request", func(t *testing.T) {
		api, client, _ := newFake(t, 3)
		q := NewQuestionnaire(nil)

		answers := []string{"Фантастика", "свой вариант", "Киберпанк", "Новинки (2020–2025)"}
		for i, a := range answers {
			if n := api.CallCount(http.MethodPost, recommendPath); n != 0 {
				t.Fatalf("request issued before step 4 (step %d)", i+1)
			}
			if err := q.Choose(ctx, client, a); err != nil {
				t.Fatalf("Choose(%q): %v", a, err)
			}
		}

		calls := api.Calls()
		if n := api.CallCount(http.MethodPost, recommendPath); n != 1 {
			t.Fatalf("expected one request, got %d", n)
		}
		var body models.RecommendationRequest
		if err := json.Unmarshal(calls[len(calls)-1].Body, &body); err != nil {
			t.Fatal(err)
		}
		want := models.RecommendationRequest{
			MainGenre:      "Фантастика",
			Subgenre:       "свой вариант",
			SubgenreDetail: "Киберпанк",
			TimePeriod:     "Новинки (2020–2025)",
			Limit:          20,
		}
		if body != want {
			t.Errorf("body = %+v, want %+v", body, want)
		}
		if q.Step() != StepResults || len(q.Results()) != 3 {
			t.Errorf("step %d with %d results", q.Step(), len(q.Results()))
		}
	})

	t.Run("failure stays on the time period step", func(t *testing.T) {
		api, client, _ := newFake(t, 1)
		api.Fail(http.MethodPost, recommendPath, http.StatusInternalServerError)
		q := NewQuestionnaire(nil)
		for _, a := range []string{"Драма", "Комедия", "Философское"} {
			if err := q.Choose(ctx, client, a); err != nil {
				t.Fatal(err)
			}
		}

		if err := q.Choose(ctx, client, "Неважно, хочу сюрприз!"); err == nil {
			t.Fatal("expected error")
		}
		if q.Step() != StepPeriod {
			t.Errorf("step = %d, want %d", q.Step(), StepPeriod)
		}
		if q.Err() != "Не удалось получить рекомендации. Попробуйте еще раз." {
			t.Errorf("err = %q", q.Err())
		}

		api.Recover()
		if err := q.Choose(ctx, client, "Неважно, хочу сюрприз!"); err != nil {
			t.Fatalf("retry: %v", err)
		}
		if q.Step() != StepResults || q.Err() != "" {
			t.Errorf("retry did not reach results: step %d err %q", q.Step(), q.Err())
		}
		if len(q.Results()) != 0 {
			t.Error("no drama movies were seeded")
		}
	})

	t.Run("missing follow-up is a dead end", func(t *testing.T) {
		_, client, _ := newFake(t, 0)
		q := NewQuestionnaire(&QuestionSet{MainGenres: []string{"Нуар"}, Periods: DefaultQuestions.Periods})
		q.Choose(ctx, client, "Нуар")
		q.Choose(ctx, client, "Другое")

		if _, err := q.Question(); !errors.Is(err, shared.ErrNoFollowUp) {
			t.Errorf("Question: expected ErrNoFollowUp, got %v", err)
		}
		if err := q.Choose(ctx, client, "anything"); !errors.Is(err, shared.ErrNoFollowUp) {
			t.Errorf("Choose: expected ErrNoFollowUp, got %v", err)
		}
		if q.Step() != StepDetail {
			t.Errorf("step = %d, want %d", q.Step(), StepDetail)
		}
	})

	t.Run("rejects unknown answers", func(t *testing.T) {
		_, client, _ := newFake(t, 0)
		q := NewQuestionnaire(nil)
		for _, a := range []string{"", "Аниме"} {
			if err := q.Choose(ctx, client, a); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("Choose(%q): expected ErrInvalidInput, got %v", a, err)
			}
		}
		if q.Step() != StepMainGenre {
			t.Error("step should not advance")
		}
	})

	t.Run("restart clears everything", func(t *testing.T) {
		_, client, _ := newFake(t, 1)
		q := NewQuestionnaire(nil)
		for _, a := range []string{"Фантастика", "Драма", "Космическая", "Классика (до 2000 года)"} {
			if err := q.Choose(ctx, client, a); err != nil {
				t.Fatal(err)
			}
		}
		q.Restart()
		if q.Step() != StepMainGenre || q.Choices() != (Choices{}) || q.Results() != nil {
			t.Errorf("restart left state: step %d choices %+v", q.Step(), q.Choices())
		}
	})
}
