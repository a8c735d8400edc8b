package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

// ListReader fetches a list with its movies.
type ListReader interface {
	GetList(ctx context.Context, id int64) (*models.List, error)
}

// ListEditor changes list membership.
type ListEditor interface {
	AddMovies(ctx context.Context, listID int64, movieIDs ...int64) (*models.List, error)
	RemoveMovies(ctx context.Context, listID int64, movieIDs ...int64) (*models.List, error)
}

// ViewerAPI is what [ResolveViewer] needs from the API client.
type ViewerAPI interface {
	ListReader
	CurrentUser(ctx context.Context) (*models.User, error)
	EnsureList(ctx context.Context, userID int64, title, description string) (*models.List, error)
}

// Membership tracks, per list, which movies the viewer has in it. A movie can
// be in several lists at once.
type Membership struct {
	mu   sync.RWMutex
	sets map[int64]map[int64]struct{}
}

func NewMembership() *Membership {
	return &Membership{sets: make(map[int64]map[int64]struct{})}
}

// Load fetches listID once and replaces its local set. A failed fetch leaves
// the set empty; the error is returned for logging only.
func (m *Membership) Load(ctx context.Context, lists ListReader, listID int64) ([]int64, error) {
	list, err := lists.GetList(ctx, listID)
	if err != nil {
		m.Set(listID, nil)
		return nil, err
	}
	ids := list.MovieIDs()
	m.Set(listID, ids)
	return ids, nil
}

// Set replaces the local set of listID.
func (m *Membership) Set(listID int64, movieIDs []int64) {
	set := make(map[int64]struct{}, len(movieIDs))
	for _, id := range movieIDs {
		set[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[listID] = set
}

// Contains reports whether movieID is in listID locally.
func (m *Membership) Contains(listID, movieID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[listID][movieID]
	return ok
}

// IDs returns the sorted movie IDs of listID.
func (m *Membership) IDs(listID int64) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.sets[listID]))
	for id := range m.sets[listID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Membership) put(listID, movieID int64, member bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[listID]
	if !ok {
		set = make(map[int64]struct{})
		m.sets[listID] = set
	}
	if member {
		set[movieID] = struct{}{}
	} else {
		delete(set, movieID)
	}
}

// Flip changes movieID's local membership in listID and returns the new
// value. The request is sent separately with [Membership.Commit].
func (m *Membership) Flip(listID, movieID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[listID]
	if !ok {
		set = make(map[int64]struct{})
		m.sets[listID] = set
	}
	if _, was := set[movieID]; was {
		delete(set, movieID)
		return false
	}
	set[movieID] = struct{}{}
	return true
}

// Commit sends the add (member) or remove for a flip already applied
// locally. A failed request undoes the flip. It returns the membership after
// the call.
func (m *Membership) Commit(ctx context.Context, api ListEditor, listID, movieID int64, member bool) (bool, error) {
	var err error
	if member {
		_, err = api.AddMovies(ctx, listID, movieID)
	} else {
		_, err = api.RemoveMovies(ctx, listID, movieID)
	}
	if err != nil {
		m.put(listID, movieID, !member)
		return !member, err
	}
	return member, nil
}

// Toggle flips movieID's membership in listID and sends the request. The
// local set changes before the request is sent and is restored if the
// request fails.
func (m *Membership) Toggle(ctx context.Context, api ListEditor, listID, movieID int64, currentlyMember bool) (bool, error) {
	want := !currentlyMember
	m.put(listID, movieID, want)
	return m.Commit(ctx, api, listID, movieID, want)
}

// ReservedList names a list that is created on demand for every user.
type ReservedList struct {
	Title       string
	Description string
}

var (
	Watchlist = ReservedList{Title: models.WatchlistTitle, Description: models.WatchlistDescription}
	Favorites = ReservedList{Title: models.FavoritesTitle}
	Seen      = ReservedList{Title: models.SeenTitle}
)

// Viewer is the resolved identity of the person using the client. The zero
// value is the anonymous viewer.
type Viewer struct {
	User  *models.User
	lists map[string]models.List
}

// Anonymous reports whether no user is signed in.
func (v Viewer) Anonymous() bool { return v.User == nil }

// List returns the resolved reserved list r.
func (v Viewer) List(r ReservedList) (models.List, bool) {
	l, ok := v.lists[r.Title]
	return l, ok
}

// ResolveViewer runs current user, ensure each reserved list (the watchlist
// when none are given) and load its membership into m. An unauthenticated
// session resolves to the anonymous viewer without error. A reserved list
// that cannot be ensured is left out of the viewer, and membership loads that
// fail leave empty sets.
func ResolveViewer(ctx context.Context, api ViewerAPI, m *Membership, logger *log.Logger, reserved ...ReservedList) (Viewer, error) {
	user, err := api.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return Viewer{}, nil
		}
		return Viewer{}, err
	}

	if len(reserved) == 0 {
		reserved = []ReservedList{Watchlist}
	}

	v := Viewer{User: user, lists: make(map[string]models.List, len(reserved))}
	for _, r := range reserved {
		list, err := api.EnsureList(ctx, user.ID, r.Title, r.Description)
		if err != nil {
			warn(logger, "reserved list unavailable", "title", r.Title, "error", err)
			continue
		}
		v.lists[r.Title] = *list

		if _, err := m.Load(ctx, api, list.ID); err != nil {
			warn(logger, "membership load failed", "list_id", list.ID, "error", err)
		}
	}
	return v, nil
}
