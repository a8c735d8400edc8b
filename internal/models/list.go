package models

import "strings"

// Reserved list titles created on demand for every user.
const (
	WatchlistTitle       = "Буду смотреть"
	WatchlistDescription = "Отложенные фильмы"
	FavoritesTitle       = "Любимое"
	SeenTitle            = "Просмотрено"
)

// protectedTitles are compared lower-cased; they include the spellings older clients created.
var protectedTitles = map[string]struct{}{
	"буду смотреть": {},
	"любимое":       {},
	"любимые":       {},
	"просмотренно":  {},
	"просмотрено":   {},
	"просмотренные": {},
}

// IsProtectedTitle reports whether title names a reserved list. This only
// hides delete and rename affordances; the API does not enforce it.
func IsProtectedTitle(title string) bool {
	_, ok := protectedTitles[strings.ToLower(strings.TrimSpace(title))]
	return ok
}

// SameTitle compares list titles case-insensitively.
func SameTitle(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// List is a user's movie list.
type List struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
	MovieCount  int        `json:"movie_count"`
	Movies      []Movie    `json:"movies,omitempty"`
}

// Protected reports whether the list has a reserved title.
func (l List) Protected() bool { return IsProtectedTitle(l.Title) }

// MovieIDs returns the identifiers of the movies in the list.
func (l List) MovieIDs() []int64 { return MovieIDs(l.Movies) }

// FindList returns the first list whose title matches case-insensitively.
func FindList(lists []List, title string) (List, bool) {
	for _, l := range lists {
		if SameTitle(l.Title, title) {
			return l, true
		}
	}
	return List{}, false
}

// ListCreate is the body of POST /lists/.
type ListCreate struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	MovieIDs    []int64 `json:"movie_ids,omitempty"`
}

// Validate checks required fields.
func (c ListCreate) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return &FieldError{Field: "title", Message: "title is required"}
	}
	return nil
}

// ListUpdate is the body of PUT /lists/{id}; nil fields are left unchanged.
type ListUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MovieIDsBody is the bulk add/remove payload.
type MovieIDsBody struct {
	MovieIDs []int64 `json:"movie_ids"`
}
