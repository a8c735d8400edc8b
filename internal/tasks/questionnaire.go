package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

// Recommender answers questionnaire requests.
type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) ([]models.Movie, error)
}

// Step is a 1-based questionnaire step; [StepResults] is terminal.
type Step int

const (
	StepMainGenre Step = iota + 1
	StepSubgenre
	StepDetail
	StepPeriod
	StepResults
)

// OtherOption is offered alongside the main genres as a subgenre.
const OtherOption = "Другое"

const (
	mainGenrePrompt      = "Выберите основной жанр:"
	subgenrePrompt       = "Выберите поджанр:"
	periodPrompt         = "Временной период:"
	resultsPrompt        = "Спасибо! Вот фильмы, которые вам подойдут:"
	recommendFailMessage = "Не удалось получить рекомендации. Попробуйте еще раз."

	// NoResultsMessage is shown on the results step when nothing matched.
	NoResultsMessage = "К сожалению, не удалось найти подходящие фильмы. Попробуйте изменить критерии поиска."
)

// FollowUp is the genre-specific third question.
type FollowUp struct {
	Prompt  string
	Options []string
}

// QuestionSet holds the fixed answers offered by the questionnaire.
type QuestionSet struct {
	MainGenres []string
	FollowUps  map[string]FollowUp
	Periods    []string
}

// DefaultQuestions is the questionnaire of the web client.
var DefaultQuestions = QuestionSet{
	MainGenres: []string{
		"Драма", "Комедия", "Боевик (Экшен)", "Фантастика", "Триллер", "Фэнтези",
		"Мелодрама", "Ужасы", "Детектив", "Приключения", "Исторический", "Криминал",
		"Военный", "Семейный", "Биографический",
	},
	FollowUps: map[string]FollowUp{
		"Комедия": {
			Prompt:  "Выбери, что тебя смешит:",
			Options: []string{"Романтическая", "Чёрная комедия", "Пародия/Мемы", "Семейная", "Абсурд/Сюр", OtherOption},
		},
		"Драма": {
			Prompt:  "Какое настроение ты ищешь?",
			Options: []string{"Грустное/Трагическое", "Вдохновляющее", "Философское", "Нейтральное", OtherOption},
		},
		"Боевик (Экшен)": {
			Prompt:  "Выбери, что тебя по душе:",
			Options: []string{"Криминальный", "Военный", "Супергеройский", "Фантастический", "Шпионский", OtherOption},
		},
		"Фантастика": {
			Prompt:  "Что тебя увлекает больше?",
			Options: []string{"Космическая", "Киберпанк", "Постапокалипсис", "Альтернативная реальность", OtherOption},
		},
		"Триллер": {
			Prompt:  "Какая атмосфера цепляет?",
			Options: []string{"Психологический", "Технотриллер", "Научно-фантастический", "Постапокалиптический", OtherOption},
		},
		"Фэнтези": {
			Prompt:  "Какой мир тебя манит?",
			Options: []string{"Эпическое", "Темное", "Городское", "Мифологическое", OtherOption},
		},
		"Мелодрама": {
			Prompt:  "Какие эмоции важнее?",
			Options: []string{"Романтическая страсть", "Семейная драма", "Историческая любовь", "Трагический выбор", OtherOption},
		},
		"Ужасы": {
			Prompt:  "Что пугает больше всего?",
			Options: []string{"Психологические", "Кровавые слэшеры", "Оккультные", OtherOption},
		},
		"Детектив": {
			Prompt:  "Какая загадка интереснее?",
			Options: []string{"Классический", "Криминальный", "Психологический", "Исторический", OtherOption},
		},
		"Приключения": {
			Prompt:  "Что вдохновляет?",
			Options: []string{"Экзотические путешествия", "Исторические квесты", "Поиски сокровищ", "Экстремальное выживание", OtherOption},
		},
		"Исторический": {
			Prompt:  "Какая тема тебе ближе?",
			Options: []string{"Военные события", "Эпические саги", "Культурные драмы", OtherOption},
		},
		"Криминал": {
			Prompt:  "Какой аспект преступного мира интересен?",
			Options: []string{"Гангстерский", "Полицейский", "Финансовые махинации", "Тюремные драмы", OtherOption},
		},
		"Военный": {
			Prompt:  "Какой аспект войны важен?",
			Options: []string{"Боевые действия", "Исторические реконструкции", "Партизанские движения", "Личные драмы солдат", OtherOption},
		},
		"Семейный": {
			Prompt:  "Какие темы важны?",
			Options: []string{"Детские приключения", "Семейные комедии", "Истории с животными", "Межпоколенческие драмы", OtherOption},
		},
		"Биографический": {
			Prompt:  "Чья история вдохновляет?",
			Options: []string{"Исторические личности", "Творческие гении", "Ученые и изобретатели", "Спортивные легенды", OtherOption},
		},
	},
	Periods: []string{
		"Классика (до 2000 года)",
		"Современное кино (2000–2020)",
		"Новинки (2020–2025)",
		"Неважно, хочу сюрприз!",
	},
}

// Choices are the answers given so far.
type Choices struct {
	MainGenre      string
	Subgenre       string
	SubgenreDetail string
	TimePeriod     string
}

// Question is what the current step asks. FreeForm questions accept any
// non-empty answer; Options are then suggestions.
type Question struct {
	Step     Step
	Prompt   string
	Options  []string
	FreeForm bool
}

// Questionnaire walks the viewer through four questions and issues exactly
// one recommendation request when the fourth is answered.
type Questionnaire struct {
	mu      sync.Mutex
	set     QuestionSet
	step    Step
	choices Choices
	results []models.Movie
	err     string
}

// NewQuestionnaire starts at step 1 with set, or [DefaultQuestions] when set is nil.
func NewQuestionnaire(set *QuestionSet) *Questionnaire {
	q := &Questionnaire{set: DefaultQuestions, step: StepMainGenre}
	if set != nil {
		q.set = *set
	}
	return q
}

// Step returns the current step.
func (q *Questionnaire) Step() Step {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.step
}

// Choices returns the answers given so far.
func (q *Questionnaire) Choices() Choices {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.choices
}

// Results returns the recommended movies once the results step is reached.
func (q *Questionnaire) Results() []models.Movie {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.results)
}

// Err returns the message of the last failed recommendation request.
func (q *Questionnaire) Err() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Question describes the current step. On step 3 it fails with
// [shared.ErrNoFollowUp] when the main genre has no follow-up question.
func (q *Questionnaire) Question() (Question, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.step {
	case StepMainGenre:
		return Question{Step: q.step, Prompt: mainGenrePrompt, Options: slices.Clone(q.set.MainGenres)}, nil
	case StepSubgenre:
		return Question{Step: q.step, Prompt: subgenrePrompt, Options: q.subgenres(), FreeForm: true}, nil
	case StepDetail:
		f, err := q.followUp()
		if err != nil {
			return Question{}, err
		}
		return Question{Step: q.step, Prompt: f.Prompt, Options: slices.Clone(f.Options)}, nil
	case StepPeriod:
		return Question{Step: q.step, Prompt: periodPrompt, Options: slices.Clone(q.set.Periods)}, nil
	default:
		return Question{Step: StepResults, Prompt: resultsPrompt}, nil
	}
}

// subgenres is every main genre plus [OtherOption], minus the chosen main genre.
func (q *Questionnaire) subgenres() []string {
	out := make([]string, 0, len(q.set.MainGenres))
	for _, g := range append(slices.Clone(q.set.MainGenres), OtherOption) {
		if g != q.choices.MainGenre {
			out = append(out, g)
		}
	}
	return out
}

func (q *Questionnaire) followUp() (FollowUp, error) {
	f, ok := q.set.FollowUps[q.choices.MainGenre]
	if !ok {
		return FollowUp{}, fmt.Errorf("%w: %q", shared.ErrNoFollowUp, q.choices.MainGenre)
	}
	return f, nil
}

// Choose answers the current step. Answering the time period sends the
// request through api: success moves to the results step, failure stays on
// the time period step and records an error message.
func (q *Questionnaire) Choose(ctx context.Context, api Recommender, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", shared.ErrInvalidInput)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.step {
	case StepMainGenre:
		if !slices.Contains(q.set.MainGenres, answer) {
			return fmt.Errorf("%w: unknown genre %q", shared.ErrInvalidInput, answer)
		}
		q.choices.MainGenre = answer
		q.step = StepSubgenre
	case StepSubgenre:
		q.choices.Subgenre = answer
		q.step = StepDetail
	case StepDetail:
		f, err := q.followUp()
		if err != nil {
			return err
		}
		if !slices.Contains(f.Options, answer) {
			return fmt.Errorf("%w: unknown option %q", shared.ErrInvalidInput, answer)
		}
		q.choices.SubgenreDetail = answer
		q.step = StepPeriod
	case StepPeriod:
		if !slices.Contains(q.set.Periods, answer) {
			return fmt.Errorf("%w: unknown time period %q", shared.ErrInvalidInput, answer)
		}
		q.choices.TimePeriod = answer
		return q.recommend(ctx, api)
	default:
		return fmt.Errorf("%w: questionnaire is complete", shared.ErrInvalidInput)
	}
	return nil
}

func (q *Questionnaire) recommend(ctx context.Context, api Recommender) error {
	q.err = ""
	movies, err := api.Recommend(ctx, q.request())
	if err != nil {
		q.err = recommendFailMessage
		return fmt.Errorf("%s: %w", recommendFailMessage, err)
	}
	q.results = movies
	q.step = StepResults
	return nil
}

func (q *Questionnaire) request() models.RecommendationRequest {
	return models.RecommendationRequest{
		MainGenre:      q.choices.MainGenre,
		Subgenre:       q.choices.Subgenre,
		SubgenreDetail: q.choices.SubgenreDetail,
		TimePeriod:     q.choices.TimePeriod,
		Limit:          models.DefaultRecommendationLimit,
	}
}

// Restart clears every answer and returns to step 1.
func (q *Questionnaire) Restart() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.step = StepMainGenre
	q.choices = Choices{}
	q.results = nil
	q.err = ""
}
