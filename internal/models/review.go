package models

import (
	"math"
	"strings"
)

// Star bounds for quick ratings; the API itself accepts any value in [0, 10].
const (
	MinStars = 1
	MaxStars = 10
)

// Review is a user's rating of a movie with optional text.
type Review struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	MovieID   int64      `json:"movie_id"`
	Content   string     `json:"content,omitempty"`
	Rating    float64    `json:"rating"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Stars rounds the rating to the nearest whole star.
func (r Review) Stars() int {
	return int(math.Round(r.Rating))
}

// ValidStars reports whether stars is a selectable quick rating.
func ValidStars(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// ReviewCreate is the body of POST /reviews/.
type ReviewCreate struct {
	MovieID int64   `json:"movie_id"`
	Rating  float64 `json:"rating"`
	Content string  `json:"content"`
}

// Validate checks the rating range accepted by the API.
func (c ReviewCreate) Validate() error {
	if c.MovieID <= 0 {
		return &FieldError{Field: "movie_id", Message: "movie is required"}
	}
	if c.Rating < 0 || c.Rating > 10 {
		return &FieldError{Field: "rating", Message: "rating must be between 0 and 10"}
	}
	return nil
}

// ReviewUpdate is the body of PUT /reviews/{id}; nil fields are left unchanged.
type ReviewUpdate struct {
	Content *string  `json:"content,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
}

// Validate checks the rating range when a rating is given.
func (u ReviewUpdate) Validate() error {
	if u.Rating != nil && (*u.Rating < 0 || *u.Rating > 10) {
		return &FieldError{Field: "rating", Message: "rating must be between 0 and 10"}
	}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" && u.Rating == nil {
		return &FieldError{Field: "content", Message: "nothing to update"}
	}
	return nil
}
