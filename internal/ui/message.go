package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgViewerResolved MsgKind = iota
	MsgRatingsSeeded
	MsgMoviesFetched
	MsgDetailLoaded
	MsgMembershipToggled
	MsgRatingSubmitted
	MsgRecommended
)

type viewerResolved struct {
	viewer tasks.Viewer
	err    error
}

type moviesFetched struct {
	req    tasks.FetchRequest
	movies []models.Movie
	err    error
}

type detailLoaded struct {
	id     int64
	detail *tasks.MovieDetail
	err    error
}

type membershipToggled struct {
	list    string
	movieID int64
	member  bool
	err     error
}

type ratingSubmitted struct {
	movieID int64
	stars   int
	err     error
}

// viewerResolvedMsg is the constructor for [MsgViewerResolved]
func viewerResolvedMsg(v tasks.Viewer, err error) Msg {
	return Msg{kind: MsgViewerResolved, data: viewerResolved{v, err}}
}

// ratingsSeededMsg is the constructor for [MsgRatingsSeeded]
func ratingsSeededMsg(err error) Msg {
	return Msg{kind: MsgRatingsSeeded, data: err}
}

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]
func moviesFetchedMsg(req tasks.FetchRequest, movies []models.Movie, err error) Msg {
	return Msg{kind: MsgMoviesFetched, data: moviesFetched{req, movies, err}}
}

// detailLoadedMsg is the constructor for [MsgDetailLoaded]
func detailLoadedMsg(id int64, detail *tasks.MovieDetail, err error) Msg {
	return Msg{kind: MsgDetailLoaded, data: detailLoaded{id, detail, err}}
}

// membershipToggledMsg is the constructor for [MsgMembershipToggled]
func membershipToggledMsg(list string, movieID int64, member bool, err error) Msg {
	return Msg{kind: MsgMembershipToggled, data: membershipToggled{list, movieID, member, err}}
}

// ratingSubmittedMsg is the constructor for [MsgRatingSubmitted]
func ratingSubmittedMsg(movieID int64, stars int, err error) Msg {
	return Msg{kind: MsgRatingSubmitted, data: ratingSubmitted{movieID, stars, err}}
}

// recommendedMsg is the constructor for [MsgRecommended]
func recommendedMsg(err error) Msg {
	return Msg{kind: MsgRecommended, data: err}
}
