package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/desertthunder/kino/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CatalogView ViewState = iota
	DetailView
	QuestionnaireView
)

const (
	defaultSimilarLimit = 6
	seedReviewLimit     = 200
	loginRequired       = "Войдите в аккаунт, чтобы пользоваться списками и оценками"
)

// API is everything the TUI reads from and writes to the backend.
type API interface {
	tasks.MovieLister
	tasks.DetailAPI
	tasks.ViewerAPI
	tasks.ListEditor
	tasks.ReviewCreator
	tasks.Recommender
	UserReviews(ctx context.Context, userID int64, skip, limit int) ([]models.Review, error)
}

// Options configure [NewModel].
type Options struct {
	PageSize     int
	DeepLink     string // catalog link such as "/?q=Matrix"
	SimilarLimit int
	Logger       *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	api    API
	logger *log.Logger
	view   ViewState

	catalog    *tasks.Catalog
	membership *tasks.Membership
	ratings    *tasks.Ratings
	viewer     tasks.Viewer
	resolving  bool

	cursor    int
	search    textinput.Model
	editing   bool
	deepLink  string

	detail        *tasks.MovieDetail
	detailID      int64
	detailFrom    ViewState
	detailErr     error
	similarLimit  int
	loadingDetail bool

	questionnaire *tasks.Questionnaire
	question      tasks.Question
	questionErr   error
	options       list.Model
	answer        textinput.Model
	asking        bool

	status string
	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model over api.
func NewModel(ctx context.Context, api API, opts Options) *Model {
	if opts.PageSize <= 0 {
		opts.PageSize = models.DefaultPageSize
	}
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = defaultSimilarLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	search := textinput.New()
	search.Placeholder = "Название фильма"
	search.Prompt = "Поиск: "

	answer := textinput.New()
	answer.Placeholder = "Свой вариант"
	answer.Prompt = "> "

	options := list.New(nil, list.NewDefaultDelegate(), 80, 24)
	options.SetShowHelp(false)
	options.SetFilteringEnabled(false)

	return &Model{
		ctx:           ctx,
		api:           api,
		logger:        opts.Logger,
		view:          CatalogView,
		catalog:       tasks.NewCatalog(opts.PageSize),
		membership:    tasks.NewMembership(),
		ratings:       tasks.NewRatings(false),
		resolving:     true,
		search:        search,
		deepLink:      opts.DeepLink,
		similarLimit:  opts.SimilarLimit,
		questionnaire: tasks.NewQuestionnaire(nil),
		options:       options,
		answer:        answer,
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Init resolves the viewer and fetches the first catalog page. A deep link
// with a search text takes precedence over the default page.
func (m *Model) Init() tea.Cmd {
	req := m.catalog.Refresh()
	if m.deepLink != "" {
		q, ok, err := tasks.ParseDeepLink(m.deepLink)
		switch {
		case err != nil:
			m.logger.Warn("ignoring deep link", "link", m.deepLink, "error", err)
		case ok:
			if synced, issued := m.catalog.SyncQuery(q); issued {
				req = synced
			}
			m.search.SetValue(q)
		}
	}
	return tea.Batch(m.resolveViewer(), m.fetch(req))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.options.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case CatalogView:
			return m.handleCatalogKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case QuestionnaireView:
			return m.handleQuestionnaireKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgViewerResolved:
		data := msg.data.(viewerResolved)
		m.resolving = false
		if data.err != nil {
			m.logger.Error("could not resolve viewer", "error", data.err)
			m.status = fmt.Sprintf("Не удалось загрузить профиль: %v", data.err)
			return m, nil
		}
		m.viewer = data.viewer
		m.ratings.Authenticate(!m.viewer.Anonymous())
		if m.viewer.Anonymous() {
			return m, nil
		}
		return m, m.seedRatings(m.viewer.User.ID)

	case MsgRatingsSeeded:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Warn("rating history unavailable", "error", err)
		}
		return m, nil

	case MsgMoviesFetched:
		data := msg.data.(moviesFetched)
		if !m.catalog.Resolve(data.req, data.movies, data.err) {
			m.logger.Debug("dropped stale page", "generation", data.req.Generation, "page", data.req.Page)
			return m, nil
		}
		if data.err != nil {
			m.logger.Error("catalog fetch failed", "page", data.req.Page, "error", data.err)
		}
		m.cursor = 0
		return m, nil

	case MsgDetailLoaded:
		data := msg.data.(detailLoaded)
		if data.id != m.detailID {
			return m, nil
		}
		m.loadingDetail = false
		m.detail = data.detail
		m.detailErr = data.err
		return m, nil

	case MsgMembershipToggled:
		data := msg.data.(membershipToggled)
		if data.err != nil {
			m.logger.Error("membership change failed", "list", data.list, "movie_id", data.movieID, "error", data.err)
			m.status = fmt.Sprintf("Не удалось изменить список «%s»", data.list)
			return m, nil
		}
		if data.member {
			m.status = fmt.Sprintf("Добавлено в «%s»", data.list)
		} else {
			m.status = fmt.Sprintf("Удалено из «%s»", data.list)
		}
		return m, nil

	case MsgRatingSubmitted:
		data := msg.data.(ratingSubmitted)
		if data.err != nil {
			m.logger.Error("rating failed", "movie_id", data.movieID, "error", data.err)
			m.status = "Не удалось сохранить оценку"
			return m, nil
		}
		m.catalog.Patch(data.movieID, func(mv *models.Movie) { mv.ReviewsCount++ })
		m.status = fmt.Sprintf("Оценка %d/10 сохранена", data.stars)
		return m, nil

	case MsgRecommended:
		err, _ := msg.data.(error)
		return m, m.afterAnswer(err)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case CatalogView:
		return m.renderCatalog()
	case DetailView:
		return m.renderDetail()
	case QuestionnaireView:
		return m.renderQuestionnaire()
	default:
		return ""
	}
}

func (m *Model) resolveViewer() tea.Cmd {
	return func() tea.Msg {
		v, err := tasks.ResolveViewer(m.ctx, m.api, m.membership, m.logger, tasks.Watchlist, tasks.Seen)
		return viewerResolvedMsg(v, err)
	}
}

func (m *Model) seedRatings(userID int64) tea.Cmd {
	return func() tea.Msg {
		reviews, err := m.api.UserReviews(m.ctx, userID, 0, seedReviewLimit)
		if err == nil {
			m.ratings.Seed(reviews)
		}
		return ratingsSeededMsg(err)
	}
}

func (m *Model) fetch(req tasks.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		movies, err := m.api.ListMovies(m.ctx, req.Query)
		return moviesFetchedMsg(req, movies, err)
	}
}

func (m *Model) loadDetail(id int64) tea.Cmd {
	m.detailFrom = m.view
	m.view = DetailView
	m.detailID = id
	m.detail = nil
	m.detailErr = nil
	m.loadingDetail = true
	m.ratings.Close()
	return func() tea.Msg {
		d, err := tasks.LoadDetail(m.ctx, m.api, id, m.similarLimit, m.logger)
		return detailLoadedMsg(id, d, err)
	}
}

// toggle flips movieID in reserved list r for a signed-in viewer.
func (m *Model) toggle(r tasks.ReservedList, movieID int64) tea.Cmd {
	if m.viewer.Anonymous() {
		m.status = loginRequired
		return nil
	}
	l, ok := m.viewer.List(r)
	if !ok {
		m.status = fmt.Sprintf("Список «%s» недоступен", r.Title)
		return nil
	}
	want := m.membership.Flip(l.ID, movieID)
	return func() tea.Msg {
		member, err := m.membership.Commit(m.ctx, m.api, l.ID, movieID, want)
		return membershipToggledMsg(r.Title, movieID, member, err)
	}
}

// rate handles the rating key and digit keys for movieID. It reports whether
// the key was consumed.
func (m *Model) rate(msg tea.KeyMsg, movieID int64) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.rate) {
		if m.viewer.Anonymous() {
			m.status = loginRequired
			return nil, true
		}
		if m.ratings.IsOpen(movieID) {
			m.ratings.Close()
		} else {
			m.ratings.Open(movieID)
		}
		return nil, true
	}
	if !m.ratings.IsOpen(movieID) {
		return nil, false
	}
	if key.Matches(msg, m.keys.back) {
		m.ratings.Close()
		return nil, true
	}
	stars, ok := starsFor(msg.String())
	if !ok {
		return nil, false
	}
	return func() tea.Msg {
		err := m.ratings.Submit(m.ctx, m.api, movieID, stars)
		return ratingSubmittedMsg(movieID, stars, err)
	}, true
}

func (m *Model) marks(movieID int64) string {
	var out string
	if l, ok := m.viewer.List(tasks.Watchlist); ok && m.membership.Contains(l.ID, movieID) {
		out += "W"
	} else {
		out += " "
	}
	if l, ok := m.viewer.List(tasks.Seen); ok && m.membership.Contains(l.ID, movieID) {
		out += "S"
	} else {
		out += " "
	}
	return out
}

func (m *Model) userRating(movieID int64) string {
	if m.ratings.IsOpen(movieID) {
		return styles.warn.Render(" оценка: 1-9, 0 = 10, esc")
	}
	if s, ok := m.ratings.Get(movieID); ok {
		return styles.star.Render(fmt.Sprintf(" ★%d", s))
	}
	return ""
}

func (m *Model) viewerLine() string {
	switch {
	case m.resolving:
		return styles.help.Render("Загрузка профиля...")
	case m.viewer.Anonymous():
		return styles.help.Render("Гость")
	default:
		return styles.ok.Render(m.viewer.User.Username)
	}
}

func errorText(err error) string {
	var pe *tasks.PageError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s [%s]", pe.Message, pe.StatusLabel())
	}
	if errors.Is(err, shared.ErrNoFollowUp) {
		return "Для этого жанра нет уточняющего вопроса"
	}
	return err.Error()
}
