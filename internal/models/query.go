package models

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Sort keys accepted by GET /movies/top.
const (
	SortByRating = "rating"
	SortByYear   = "year"
	SortByTitle  = "title"
	SortByVotes  = "votes"
)

// SortKeys lists the accepted sort keys; the first is the default.
var SortKeys = []string{SortByRating, SortByYear, SortByTitle, SortByVotes}

// DefaultPageSize matches the page size of the web catalog.
const DefaultPageSize = 50

// Filters are the user-editable catalog filters. Zero values are omitted from queries.
type Filters struct {
	Search    string
	Genre     string
	Year      int
	MinRating float64
	SortBy    string
}

// Validate rejects unknown sort keys and out-of-range values.
func (f Filters) Validate() error {
	if f.SortBy != "" && !slices.Contains(SortKeys, f.SortBy) {
		return &FieldError{Field: "sort_by", Message: fmt.Sprintf("unknown sort key %q (want one of %s)", f.SortBy, strings.Join(SortKeys, ", "))}
	}
	if f.Year < 0 {
		return &FieldError{Field: "year", Message: "year must be positive"}
	}
	if f.MinRating < 0 || f.MinRating > 10 {
		return &FieldError{Field: "min_rating", Message: "minimum rating must be between 0 and 10"}
	}
	return nil
}

// MovieQuery is a fully resolved request for one catalog page.
type MovieQuery struct {
	Filters
	Limit int
	Skip  int
}

// PageQuery builds the query for a 1-based page.
func PageQuery(f Filters, page, pageSize int) MovieQuery {
	if page < 1 {
		page = 1
	}
	return MovieQuery{Filters: f, Limit: pageSize, Skip: (page - 1) * pageSize}
}

// Values encodes the query parameters understood by GET /movies/top.
func (q MovieQuery) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("q", s)
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.Year > 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}
	if q.MinRating > 0 {
		v.Set("min_rating", strconv.FormatFloat(q.MinRating, 'f', -1, 64))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("skip", strconv.Itoa(q.Skip))
	return v
}
