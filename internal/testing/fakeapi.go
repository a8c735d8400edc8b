package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/kino/internal/models"
	"github.com/go-chi/chi/v5"
)

// Call is a request recorded by [FakeAPI]. Path excludes the /api prefix.
type Call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type fakeAccount struct {
	user     models.User
	password string
}

// FakeAPI is an in-memory catalog backend served over httptest.
//
// Field access from tests must go through the helper methods; handlers run
// on server goroutines.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	movies   []models.Movie
	lists    map[int64]*models.List
	reviews  []models.Review
	accounts map[string]*fakeAccount // by email
	tokens   map[string]int64        // token -> user id
	failures map[string]int          // "METHOD /path" -> status
	calls    []Call
	nextID   int64
}

// NewFakeAPI starts a fake backend that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		lists:    make(map[int64]*models.List),
		accounts: make(map[string]*fakeAccount),
		tokens:   make(map[string]int64),
		failures: make(map[string]int),
		nextID:   1000,
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Route("/api", func(r chi.Router) {
		r.Get("/movies/top", f.listMovies)
		r.Post("/movies/recommend", f.recommend)
		r.Get("/movies/{id}", f.getMovie)
		r.Get("/movies/{id}/similar", f.similarMovies)

		r.Post("/users/login", f.login)
		r.Post("/users/register", f.register)
		r.Get("/users/me", f.me)
		r.Get("/users/me/profile", f.profile)
		r.Put("/users/me/password", f.updatePassword)
		r.Post("/users/forgot-password", f.ack("reset link sent"))
		r.Post("/users/reset-password", f.ack("password updated"))

		r.Post("/lists/", f.createList)
		r.Get("/lists/user/{userID}", f.userLists)
		r.Get("/lists/{id}", f.getList)
		r.Put("/lists/{id}", f.updateList)
		r.Delete("/lists/{id}", f.deleteList)
		r.Post("/lists/{id}/movies", f.changeListMovies(true))
		r.Delete("/lists/{id}/movies", f.changeListMovies(false))

		r.Get("/reviews/", f.allReviews)
		r.Post("/reviews/", f.createReview)
		r.Get("/reviews/movie/{id}", f.movieReviews)
		r.Get("/reviews/user/{id}", f.userReviews)
		r.Put("/reviews/{id}", f.updateReview)
		r.Delete("/reviews/{id}", f.deleteReview)
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the API base URL (server root + "/api").
func (f *FakeAPI) URL() string { return f.Server.URL + "/api" }

// AddMovies seeds the catalog.
func (f *FakeAPI) AddMovies(movies ...models.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies = append(f.movies, movies...)
}

// AddUser registers an account reachable with token.
func (f *FakeAPI) AddUser(id int64, email, password, token string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{ID: id, Email: email, Username: strings.Split(email, "@")[0], Role: models.RoleUser, IsActive: true}
	f.accounts[email] = &fakeAccount{user: u, password: password}
	if token != "" {
		f.tokens[token] = id
	}
	return u
}

// AddList stores a list with the given movie IDs from the catalog.
func (f *FakeAPI) AddList(ownerID int64, title string, movieIDs ...int64) models.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l := &models.List{ID: f.nextID, Title: title, OwnerID: ownerID}
	l.CreatedAt.Time = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.setListMovies(l, movieIDs)
	f.lists[l.ID] = l
	return *l
}

// AddReview stores a review.
func (f *FakeAPI) AddReview(r models.Review) models.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
	}
	f.reviews = append(f.reviews, r)
	return r
}

// List returns a copy of a stored list.
func (f *FakeAPI) List(id int64) (models.List, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[id]
	if !ok {
		return models.List{}, false
	}
	return *l, true
}

// ListsOf returns the lists owned by userID.
func (f *FakeAPI) ListsOf(userID int64) []models.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listsOf(userID)
}

// ReviewsOf returns the reviews written by userID.
func (f *FakeAPI) ReviewsOf(userID int64) []models.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.AuthorID == userID {
			out = append(out, r)
		}
	}
	return out
}

// Fail makes every request matching method and path (without /api) answer with status.
func (f *FakeAPI) Fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// Recover removes all configured failures.
func (f *FakeAPI) Recover() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.failures)
}

// Calls returns the recorded requests.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount counts recorded requests with method and path.
func (f *FakeAPI) CallCount(method, path string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		path := strings.TrimPrefix(r.URL.Path, "/api")

		f.mu.Lock()
		f.calls = append(f.calls, Call{
			Method: r.Method,
			Path:   path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		status, failing := f.failures[r.Method+" "+path]
		f.mu.Unlock()

		if failing {
			writeDetail(w, status, fmt.Sprintf("forced failure %d", status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// viewer resolves the bearer token; it writes a 401 and returns false when absent or unknown.
func (f *FakeAPI) viewer(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if ok {
		f.mu.Lock()
		id, known := f.tokens[token]
		var user models.User
		for _, a := range f.accounts {
			if a.user.ID == id {
				user = a.user
			}
		}
		f.mu.Unlock()
		if known {
			return user, true
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	return models.User{}, false
}

func (f *FakeAPI) listMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("q"))
	genre := strings.ToLower(q.Get("genre"))
	year, _ := strconv.Atoi(q.Get("year"))
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = models.DefaultPageSize
	}

	f.mu.Lock()
	var matched []models.Movie
	for _, m := range f.movies {
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		if genre != "" && !slices.ContainsFunc(m.Genres, func(g string) bool { return strings.ToLower(g) == genre }) {
			continue
		}
		if year > 0 && m.YearRelease != year {
			continue
		}
		matched = append(matched, m)
	}
	f.mu.Unlock()

	start := min(skip, len(matched))
	end := min(start+limit, len(matched))
	writeJSON(w, http.StatusOK, nonNil(matched[start:end]))
}

func (f *FakeAPI) findMovie(id int64) (models.Movie, bool) {
	for _, m := range f.movies {
		if m.ID == id {
			return m, true
		}
	}
	return models.Movie{}, false
}

func (f *FakeAPI) getMovie(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	f.mu.Lock()
	m, ok := f.findMovie(id)
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (f *FakeAPI) similarMovies(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	f.mu.Lock()
	var out []models.Movie
	for _, m := range f.movies {
		if m.ID != id && (limit <= 0 || len(out) < limit) {
			out = append(out, m)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (f *FakeAPI) recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MainGenre == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "main_genre is required")
		return
	}

	f.mu.Lock()
	var out []models.Movie
	for _, m := range f.movies {
		if slices.ContainsFunc(m.Genres, func(g string) bool { return strings.EqualFold(g, req.MainGenre) }) && len(out) < req.Limit {
			out = append(out, m)
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[creds.Email]
	if !ok || acct.password != creds.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token := fmt.Sprintf("token-%d", acct.user.ID)
	f.tokens[token] = acct.user.ID
	writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer", User: acct.user})
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[reg.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	f.nextID++
	u := models.User{ID: f.nextID, Email: reg.Email, Username: reg.Username, Role: models.RoleUser, IsActive: true}
	f.accounts[reg.Email] = &fakeAccount{user: u, password: reg.Password}
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	if u, ok := f.viewer(w, r); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

func (f *FakeAPI) profile(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	p := models.Profile{User: u, ListsCount: len(f.listsOf(u.ID)), RecentWatchedMovies: []models.Movie{}, FavoriteGenres: []models.GenreCount{}}
	var sum float64
	for _, rv := range f.reviews {
		if rv.AuthorID == u.ID {
			p.ReviewsCount++
			sum += rv.Rating
		}
	}
	f.mu.Unlock()

	if p.ReviewsCount > 0 {
		avg := sum / float64(p.ReviewsCount)
		p.AverageRating = &avg
	}
	writeJSON(w, http.StatusOK, p)
}

func (f *FakeAPI) updatePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}
	var change models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	acct := f.accounts[u.Email]
	if acct.password != change.OldPassword {
		writeDetail(w, http.StatusBadRequest, "Incorrect old password")
		return
	}
	acct.password = change.NewPassword
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeAPI) ack(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

func (f *FakeAPI) listsOf(userID int64) []models.List {
	var out []models.List
	for _, l := range f.lists {
		if l.OwnerID == userID {
			out = append(out, *l)
		}
	}
	slices.SortFunc(out, func(a, b models.List) int { return int(a.ID - b.ID) })
	return out
}

func (f *FakeAPI) setListMovies(l *models.List, ids []int64) {
	movies := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := f.findMovie(id); ok {
			movies = append(movies, m)
		} else {
			movies = append(movies, models.Movie{ID: id})
		}
	}
	l.Movies = movies
	l.MovieCount = len(movies)
}

func (f *FakeAPI) createList(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}
	var create models.ListCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil || create.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l := &models.List{ID: f.nextID, Title: create.Title, Description: create.Description, OwnerID: u.ID}
	l.CreatedAt.Time = time.Now().UTC()
	f.setListMovies(l, create.MovieIDs)
	f.lists[l.ID] = l
	writeJSON(w, http.StatusOK, l)
}

func (f *FakeAPI) userLists(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	f.mu.Lock()
	out := f.listsOf(id)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (f *FakeAPI) getList(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	f.mu.Lock()
	l, ok := f.lists[id]
	var out models.List
	if ok {
		out = *l
	}
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "List not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ownedList looks up a list the viewer owns, writing 404/403 otherwise. Caller holds f.mu.
func (f *FakeAPI) ownedList(w http.ResponseWriter, r *http.Request, u models.User) (*models.List, bool) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	l, ok := f.lists[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "List not found")
		return nil, false
	}
	if l.OwnerID != u.ID {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return nil, false
	}
	return l, true
}

func (f *FakeAPI) updateList(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}
	var update models.ListUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.ownedList(w, r, u)
	if !ok {
		return
	}
	if update.Title != nil {
		l.Title = *update.Title
	}
	if update.Description != nil {
		l.Description = *update.Description
	}
	writeJSON(w, http.StatusOK, l)
}

func (f *FakeAPI) deleteList(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.ownedList(w, r, u)
	if !ok {
		return
	}
	delete(f.lists, l.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "List deleted successfully"})
}

func (f *FakeAPI) changeListMovies(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := f.viewer(w, r)
		if !ok {
			return
		}
		var body models.MovieIDsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "movie_ids is required")
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		l, ok := f.ownedList(w, r, u)
		if !ok {
			return
		}

		ids := l.MovieIDs()
		for _, id := range body.MovieIDs {
			has := slices.Contains(ids, id)
			switch {
			case add && !has:
				ids = append(ids, id)
			case !add && has:
				ids = slices.DeleteFunc(ids, func(x int64) bool { return x == id })
			}
		}
		f.setListMovies(l, ids)
		writeJSON(w, http.StatusOK, l)
	}
}

func (f *FakeAPI) filterReviews(keep func(models.Review) bool) []models.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for _, rv := range f.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	return out
}

func (f *FakeAPI) allReviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.filterReviews(func(models.Review) bool { return true }))
}

func (f *FakeAPI) movieReviews(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	writeJSON(w, http.StatusOK, f.filterReviews(func(rv models.Review) bool { return rv.MovieID == id }))
}

func (f *FakeAPI) userReviews(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	writeJSON(w, http.StatusOK, f.filterReviews(func(rv models.Review) bool { return rv.AuthorID == id }))
}

func (f *FakeAPI) createReview(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}
	var create models.ReviewCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rv := models.Review{ID: f.nextID, AuthorID: u.ID, MovieID: create.MovieID, Rating: create.Rating, Content: create.Content}
	rv.CreatedAt.Time = time.Now().UTC()
	f.reviews = append(f.reviews, rv)
	writeJSON(w, http.StatusOK, rv)
}

func (f *FakeAPI) updateReview(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var update models.ReviewUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reviews {
		rv := &f.reviews[i]
		if rv.ID != id {
			continue
		}
		if rv.AuthorID != u.ID {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		if update.Rating != nil {
			rv.Rating = *update.Rating
		}
		if update.Content != nil {
			rv.Content = *update.Content
		}
		writeJSON(w, http.StatusOK, rv)
		return
	}
	writeDetail(w, http.StatusNotFound, "Review not found")
}

func (f *FakeAPI) deleteReview(w http.ResponseWriter, r *http.Request) {
	u, ok := f.viewer(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rv := range f.reviews {
		if rv.ID == id && rv.AuthorID == u.ID {
			f.reviews = slices.Delete(f.reviews, i, i+1)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Review not found")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
