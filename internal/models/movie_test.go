package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCombinedRating(t *testing.T) {
	tc := []struct {
		name    string
		sources [3]Score
		want    float64
		wantOK  bool
	}{
		{name: "no positive sources", sources: [3]Score{0, 0, 0}, wantOK: false},
		{name: "negative is not positive", sources: [3]Score{-1, 0, 0}, wantOK: false},
		{name: "single source", sources: [3]Score{7.3, 0, 0}, want: 7.3, wantOK: true},
		{name: "zero is skipped", sources: [3]Score{8, 0, 9}, want: 8.5, wantOK: true},
		{name: "three sources rounded", sources: [3]Score{8.1, 7.7, 6.5}, want: 7.4, wantOK: true},
		{name: "repeating decimal", sources: [3]Score{9, 8, 8}, want: 8.3, wantOK: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := Movie{KPRating: tt.sources[0], IMDbRating: tt.sources[1], CriticsRating: tt.sources[2]}
			got, ok := m.CombinedRating()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CombinedRating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovieUnmarshal(t *testing.T) {
	payload := `{
		"id": 301,
		"title": "Матрица",
		"english_title": "The Matrix",
		"kp_rating": 8.5,
		"imdb_rating": "8.7",
		"critics_rating": null,
		"site_rating": 0,
		"fees_world": "$ 463517383",
		"sum_votes": 640000,
		"poster_url": "https://example.com/p.jpg",
		"movie_length": 136,
		"world_premiere": "1999-03-24",
		"budget": 63000000,
		"year_release": 1999,
		"age_rating": null,
		"genres": ["фантастика", "боевик"],
		"countries": ["США"],
		"persons": [[[1, "Киану Ривз"], [2, "Лоренс Фишбёрн"]]],
		"director": ["1;9837;Лана Вачовски"],
		"combined_rating": 8.6
	}`

	var m Movie
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.IMDbRating != 8.7 || m.CriticsRating != 0 {
		t.Errorf("unexpected rating sources %v", m.RatingSources())
	}
	if m.Budget != "63000000" || m.FeesWorld != "$ 463517383" {
		t.Errorf("unexpected money fields %q %q", m.Budget, m.FeesWorld)
	}
	if m.Director.Lead() != "Лана Вачовски" {
		t.Errorf("director = %q", m.Director.Lead())
	}
	if len(m.Persons.People) != 2 {
		t.Errorf("expected 2 cast members, got %d", len(m.Persons.People))
	}
	if m.Genres.String() != "фантастика, боевик" {
		t.Errorf("genres = %q", m.Genres.String())
	}
	if !m.WorldPremiere.Equal(time.Date(1999, 3, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("world premiere = %v", m.WorldPremiere)
	}
	if rating, ok := m.CombinedRating(); !ok || rating != 8.6 {
		t.Errorf("CombinedRating() = %v, %v", rating, ok)
	}
}

func TestFieldDecoders(t *testing.T) {
	t.Run("Genres from comma string", func(t *testing.T) {
		var g Genres
		if err := json.Unmarshal([]byte(`"драма, комедия ,"`), &g); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(g) != 2 || g[1] != "комедия" {
			t.Errorf("Genres = %v", g)
		}
	})

	t.Run("Score rejects text", func(t *testing.T) {
		var s Score
		if err := json.Unmarshal([]byte(`"high"`), &s); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("Score accepts decimal comma", func(t *testing.T) {
		var s Score
		if err := json.Unmarshal([]byte(`"7,9"`), &s); err != nil || s != 7.9 {
			t.Errorf("Score = %v, %v", s, err)
		}
	})

	t.Run("Score treats non-finite and blank text as missing", func(t *testing.T) {
		for _, raw := range []string{`"inf"`, `"-Infinity"`, `"NaN"`, `"None"`, `"null"`} {
			s := Score(5)
			if err := json.Unmarshal([]byte(raw), &s); err != nil {
				t.Fatalf("%s: unexpected error: %v", raw, err)
			}
			if s != 0 || s.Positive() {
				t.Errorf("%s: Score = %v, want 0", raw, s)
			}
		}
	})

	t.Run("Amount treats None as empty", func(t *testing.T) {
		for _, raw := range []string{`"None"`, `" none "`, `"NULL"`} {
			a := Amount("x")
			if err := json.Unmarshal([]byte(raw), &a); err != nil || a != "" {
				t.Errorf("%s: Amount = %q, %v", raw, a, err)
			}
		}
	})

	t.Run("Timestamp zone-less", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"2024-05-01T10:20:30.123456"`), &ts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ts.Year() != 2024 || ts.Minute() != 20 {
			t.Errorf("Timestamp = %v", ts)
		}
	})

	t.Run("Timestamp rejects garbage", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
			t.Error("expected error")
		}
	})
}

func TestMovieIDs(t *testing.T) {
	l := List{Movies: []Movie{{ID: 3}, {ID: 1}}}
	ids := l.MovieIDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("MovieIDs() = %v", ids)
	}
}
