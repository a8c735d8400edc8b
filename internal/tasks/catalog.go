package tasks

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

const catalogErrorMessage = "Не удалось загрузить фильмы. Проверьте соединение и бэкенд"

// MovieLister fetches one catalog page.
type MovieLister interface {
	ListMovies(ctx context.Context, q models.MovieQuery) ([]models.Movie, error)
}

// CatalogState is the lifecycle of the catalog page.
type CatalogState int

const (
	CatalogIdle CatalogState = iota
	CatalogFetching
	CatalogReady
	CatalogErrored
)

func (s CatalogState) String() string {
	switch s {
	case CatalogIdle:
		return "idle"
	case CatalogFetching:
		return "fetching"
	case CatalogReady:
		return "ready"
	case CatalogErrored:
		return "errored"
	default:
		return ""
	}
}

// FetchRequest is an issued catalog fetch. Only the request with the latest
// generation may change the catalog when it resolves.
type FetchRequest struct {
	Generation uint64
	Page       int
	Query      models.MovieQuery
}

// CatalogSnapshot is a consistent copy of the catalog state for rendering.
type CatalogSnapshot struct {
	State    CatalogState
	Page     int
	PageSize int
	Input    models.Filters
	Applied  models.Filters
	Movies   []models.Movie
	Err      *PageError
	HasNext  bool
	HasPrev  bool
}

// Catalog holds pending input filters, applied filters, the current page and
// the fetched rows. Editing input never issues a fetch; only [Catalog.Apply],
// paging, [Catalog.SyncQuery] and [Catalog.Refresh] do.
type Catalog struct {
	mu         sync.Mutex
	pageSize   int
	input      models.Filters
	applied    models.Filters
	page       int
	shown      int
	generation uint64
	state      CatalogState
	movies     []models.Movie
	err        *PageError
}

// NewCatalog creates an idle catalog on page 1. A non-positive pageSize uses [models.DefaultPageSize].
func NewCatalog(pageSize int) *Catalog {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &Catalog{pageSize: pageSize, page: 1, shown: 1}
}

// PageSize returns the number of rows requested per page.
func (c *Catalog) PageSize() int { return c.pageSize }

// Input returns the pending, unapplied filters.
func (c *Catalog) Input() models.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the pending filters.
func (c *Catalog) SetInput(f models.Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = f
}

// EditInput changes the pending filters in place.
func (c *Catalog) EditInput(fn func(*models.Filters)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.input)
}

// Applied returns the filters used by the last issued fetch.
func (c *Catalog) Applied() models.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

// Page returns the requested 1-based page.
func (c *Catalog) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// State returns the current lifecycle state.
func (c *Catalog) State() CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply copies the input filters to the applied filters, resets to page 1
// and issues a fetch. It always fetches, so it doubles as the retry action.
func (c *Catalog) Apply() (FetchRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.input.Validate(); err != nil {
		return FetchRequest{}, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	c.applied = c.input
	c.page = 1
	return c.issue(), nil
}

// SyncQuery applies a search text that arrived from outside the filter form
// (a deep link). When it differs from the applied search it overwrites both
// the input and the applied search, resets the page and issues a fetch.
func (c *Catalog) SyncQuery(q string) (FetchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q = strings.TrimSpace(q)
	if q == c.applied.Search {
		return FetchRequest{}, false
	}
	c.input.Search = q
	c.applied.Search = q
	c.page = 1
	return c.issue(), true
}

// NextPage advances one page. It does nothing unless the shown page was full.
func (c *Catalog) NextPage() (FetchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasNext() {
		return FetchRequest{}, false
	}
	c.page = c.shown + 1
	return c.issue(), true
}

// PrevPage goes back one page. It does nothing on page 1.
func (c *Catalog) PrevPage() (FetchRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.page <= 1 {
		return FetchRequest{}, false
	}
	c.page--
	return c.issue(), true
}

// GoTo jumps to a 1-based page of the applied filters.
func (c *Catalog) GoTo(page int) FetchRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = max(page, 1)
	return c.issue()
}

// Refresh re-issues the fetch for the applied filters and current page.
func (c *Catalog) Refresh() FetchRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue()
}

func (c *Catalog) issue() FetchRequest {
	c.generation++
	c.state = CatalogFetching
	c.err = nil
	return FetchRequest{
		Generation: c.generation,
		Page:       c.page,
		Query:      models.PageQuery(c.applied, c.page, c.pageSize),
	}
}

// Latest reports whether req is still the most recently issued fetch.
func (c *Catalog) Latest(req FetchRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return req.Generation == c.generation
}

// Resolve applies the outcome of req. Responses to superseded requests are
// dropped and Resolve returns false.
func (c *Catalog) Resolve(req FetchRequest, movies []models.Movie, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Generation != c.generation {
		return false
	}
	if err != nil {
		c.state = CatalogErrored
		c.err = newPageError(err, "", catalogErrorMessage)
		c.movies = nil
		return true
	}
	c.state = CatalogReady
	c.movies = slices.Clone(movies)
	c.shown = req.Page
	return true
}

// Fetch runs req against lister and resolves it.
func (c *Catalog) Fetch(ctx context.Context, lister MovieLister, req FetchRequest) bool {
	movies, err := lister.ListMovies(ctx, req.Query)
	return c.Resolve(req, movies, err)
}

// Load refreshes the current page and waits for it. The returned error is
// the page error when the fetch failed.
func (c *Catalog) Load(ctx context.Context, lister MovieLister) error {
	req := c.Refresh()
	c.Fetch(ctx, lister, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return nil
}

// Movies returns a copy of the shown rows.
func (c *Catalog) Movies() []models.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.movies)
}

// Err returns the page error of the last resolved fetch, if any.
func (c *Catalog) Err() *PageError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// HasNext is true only when the shown page came back exactly full.
func (c *Catalog) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasNext()
}

func (c *Catalog) hasNext() bool {
	return c.state == CatalogReady && len(c.movies) == c.pageSize
}

// HasPrev is true past page 1.
func (c *Catalog) HasPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page > 1
}

// Rank is the 1-based position of the i-th shown row across all pages.
func (c *Catalog) Rank(i int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.shown-1)*c.pageSize + i + 1
}

// Patch updates the shown row for movieID in place and reports whether it was found.
func (c *Catalog) Patch(movieID int64, fn func(*models.Movie)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.movies {
		if c.movies[i].ID == movieID {
			fn(&c.movies[i])
			return true
		}
	}
	return false
}

// Snapshot copies the whole state under one lock.
func (c *Catalog) Snapshot() CatalogSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CatalogSnapshot{
		State:    c.state,
		Page:     c.page,
		PageSize: c.pageSize,
		Input:    c.input,
		Applied:  c.applied,
		Movies:   slices.Clone(c.movies),
		Err:      c.err,
		HasNext:  c.hasNext(),
		HasPrev:  c.page > 1,
	}
}

// ParseDeepLink extracts the search text from a catalog link such as
// "/?q=Matrix" or "http://host/?q=Matrix". ok is false when the link has no q parameter.
func ParseDeepLink(link string) (q string, ok bool, err error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	values := u.Query()
	if !values.Has("q") {
		return "", false, nil
	}
	return strings.TrimSpace(values.Get("q")), true, nil
}
