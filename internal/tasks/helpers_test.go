package tasks

import (
	"fmt"
	"testing"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/services"
	"github.com/desertthunder/kino/internal/shared"
	tu "github.com/desertthunder/kino/internal/testing"
)

const (
	viewerID    = 7
	viewerToken = "tok-7"
)

// newFake seeds n movies titled "Фильм 1".."Фильм n" and one user, and
// returns anonymous and authenticated clients for it.
func newFake(t *testing.T, n int) (api *tu.FakeAPI, anon, authed *services.Client) {
	t.Helper()
	api = tu.NewFakeAPI(t)
	for i := 1; i <= n; i++ {
		api.AddMovies(models.Movie{
			ID:          int64(i),
			Title:       fmt.Sprintf("Фильм %d", i),
			YearRelease: 2000 + i,
			Genres:      models.Genres{"Фантастика"},
			KPRating:    7,
		})
	}
	api.AddUser(viewerID, "neo@example.com", "secret1", viewerToken)

	anon = services.NewClient(services.ClientOpts{BaseURL: api.URL()})
	authed = anon.WithSession(shared.NewSession(viewerToken))
	return api, anon, authed
}
