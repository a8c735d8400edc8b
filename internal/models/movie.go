package models

import "math"

// Movie is a catalog entry as returned by the listing, detail, similar and recommend endpoints.
type Movie struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	EnglishTitle  string    `json:"english_title,omitempty"`
	KPRating      Score     `json:"kp_rating"`
	IMDbRating    Score     `json:"imdb_rating"`
	CriticsRating Score     `json:"critics_rating"`
	SiteRating    Score     `json:"site_rating"`
	SumVotes      int64     `json:"sum_votes"`
	ReviewsCount  int       `json:"reviews_count,omitempty"`
	FeesWorld     Amount    `json:"fees_world,omitempty"`
	Budget        Amount    `json:"budget,omitempty"`
	PosterURL     string    `json:"poster_url,omitempty"`
	MovieLength   int       `json:"movie_length"`
	Description   string    `json:"description,omitempty"`
	WorldPremiere Timestamp `json:"world_premiere"`
	YearRelease   int       `json:"year_release"`
	AgeRating     int       `json:"age_rating,omitempty"`
	Genres        Genres    `json:"genres"`
	Countries     []string  `json:"countries,omitempty"`
	Persons       Credit    `json:"persons"`
	Director      Credit    `json:"director"`
	Combined      *float64  `json:"combined_rating,omitempty"`
	Rank          int       `json:"rank,omitempty"`
}

// RatingSources returns the primary, secondary and critic sources in that order.
func (m Movie) RatingSources() [3]Score {
	return [3]Score{m.KPRating, m.IMDbRating, m.CriticsRating}
}

// CombinedRating is the mean of the positive rating sources rounded to one
// decimal. ok is false when no source is positive.
func (m Movie) CombinedRating() (rating float64, ok bool) {
	var sum float64
	var n int
	for _, s := range m.RatingSources() {
		if s.Positive() {
			sum += float64(s)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}

// MovieIDs projects the identifiers of movies.
func MovieIDs(movies []Movie) []int64 {
	ids := make([]int64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}
