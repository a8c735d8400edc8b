package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kino/internal/tasks"
)

func (m *Model) openQuestionnaire() tea.Cmd {
	m.view = QuestionnaireView
	m.status = ""
	m.refreshQuestion()
	return nil
}

// refreshQuestion rebuilds the option list for the current step.
func (m *Model) refreshQuestion() {
	q, err := m.questionnaire.Question()
	m.question = q
	m.questionErr = err

	m.answer.Reset()
	m.answer.Blur()
	switch {
	case err != nil:
		m.options.SetItems(nil)
	case q.Step == tasks.StepResults:
		m.options.SetItems(movieItems(m.questionnaire.Results()))
	default:
		m.options.SetItems(optionItems(q.Options))
		if q.FreeForm {
			m.answer.Focus()
		}
	}
	m.options.Title = q.Prompt
	m.options.Select(0)
}

func (m *Model) handleQuestionnaireKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.asking {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.view = CatalogView
		return m, nil
	case key.Matches(msg, m.keys.restart):
		m.questionnaire.Restart()
		m.status = ""
		m.refreshQuestion()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.submitAnswer()
	case key.Matches(msg, m.keys.up), key.Matches(msg, m.keys.down):
		if !m.question.FreeForm || msg.Type != tea.KeyRunes {
			var cmd tea.Cmd
			m.options, cmd = m.options.Update(msg)
			return m, cmd
		}
	}

	if m.question.FreeForm {
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		return m, cmd
	}
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	return m, nil
}

// submitAnswer answers the current step with the typed text, or the
// highlighted option when nothing was typed. On the results step it opens
// the highlighted movie.
func (m *Model) submitAnswer() tea.Cmd {
	if m.questionErr != nil {
		return nil
	}

	if m.question.Step == tasks.StepResults {
		if item, ok := m.options.SelectedItem().(movieItem); ok {
			return m.loadDetail(item.movie.ID)
		}
		return nil
	}

	answer := strings.TrimSpace(m.answer.Value())
	if answer == "" {
		if item, ok := m.options.SelectedItem().(optionItem); ok {
			answer = string(item)
		}
	}
	if answer == "" {
		return nil
	}

	m.asking = true
	m.status = ""
	return func() tea.Msg {
		return recommendedMsg(m.questionnaire.Choose(m.ctx, m.api, answer))
	}
}

func (m *Model) afterAnswer(err error) tea.Cmd {
	m.asking = false
	if err != nil {
		m.logger.Warn("questionnaire answer rejected", "step", m.question.Step, "error", err)
		if msg := m.questionnaire.Err(); msg != "" {
			m.status = msg
		} else {
			m.status = errorText(err)
		}
	}
	m.refreshQuestion()
	return nil
}

func (m *Model) renderQuestionnaire() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Подбор фильма · шаг %d из %d", m.questionnaire.Step(), tasks.StepResults)))
	b.WriteString("\n")

	switch {
	case m.questionErr != nil:
		b.WriteString(styles.err.Render(errorText(m.questionErr)))
		b.WriteString("\n")
	case m.question.Step == tasks.StepResults && len(m.questionnaire.Results()) == 0:
		b.WriteString(styles.warn.Render(tasks.NoResultsMessage))
		b.WriteString("\n")
	default:
		b.WriteString(m.options.View())
		b.WriteString("\n")
		if m.question.FreeForm {
			b.WriteString(m.answer.View())
			b.WriteString("\n")
		}
	}

	if m.asking {
		b.WriteString(styles.help.Render("Подбираем фильмы..."))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(styles.err.Render(m.status))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.restart, m.keys.back}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}
