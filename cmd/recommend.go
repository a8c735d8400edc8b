package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/kino/internal/formatter"
	"github.com/desertthunder/kino/internal/shared"
	"github.com/desertthunder/kino/internal/tasks"
	"github.com/urfave/cli/v3"
)

// answerFlags maps each questionnaire step to the flag that answers it.
var answerFlags = map[tasks.Step]string{
	tasks.StepMainGenre: "genre",
	tasks.StepSubgenre:  "subgenre",
	tasks.StepDetail:    "detail",
	tasks.StepPeriod:    "period",
}

// Recommend walks the questionnaire with the answers given as flags. The
// first unanswered question is printed with its options.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	client, err := r.session()
	if err != nil {
		return err
	}

	q := tasks.NewQuestionnaire(nil)
	for q.Step() != tasks.StepResults {
		question, err := q.Question()
		if err != nil {
			return err
		}

		flag := answerFlags[question.Step]
		answer := cmd.String(flag)
		if answer == "" {
			r.writePlainHeader(fmt.Sprintf("Шаг %d из 4", question.Step))
			r.writePlain("%s\n", question.Prompt)
			for _, opt := range question.Options {
				r.writePlain("  • %s\n", opt)
			}
			if question.FreeForm {
				r.writePlain("  (или любой свой вариант)\n")
			}
			return fmt.Errorf("%w: --%s", shared.ErrMissingArgument, flag)
		}

		r.logger.Debug("answering", "step", question.Step, "answer", answer)
		if err := q.Choose(ctx, client, answer); err != nil {
			return err
		}
	}

	results := q.Results()
	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	question, _ := q.Question()
	r.writePlainHeader(question.Prompt)
	if len(results) == 0 {
		return r.writePlain("%s\n", tasks.NoResultsMessage)
	}
	for i, m := range results {
		r.writePlain("%s\n", formatter.MovieRow(i+1, m))
	}
	return nil
}
