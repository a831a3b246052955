package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/okian/wellness/internal/adapters/answercache"
	"github.com/okian/wellness/internal/domain/features"
	"github.com/okian/wellness/internal/domain/questionnaire"
	"github.com/okian/wellness/pkg/logger"
	"github.com/spf13/cobra"
)

// errIncomplete is returned when input ends before every prompt is answered.
var errIncomplete = errors.New("questionnaire incomplete; answers so far are saved")

func newAskCmd(c *cli) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer the sleep questionnaire and get a recommendation",
		Long: "Asks each sleep prompt on stdin. Answers are saved after every step, " +
			"so an interrupted run resumes at the first unanswered prompt.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.ask(cmd.Context(), reset)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "discard saved answers and start over")
	return cmd
}

func (c *cli) ask(ctx context.Context, reset bool) error {
	cache, err := answercache.Open(c.cfg.AnswerCachePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Get().Error(ctx, "close answer cache", logger.Error(err))
		}
	}()

	session := questionnaire.NewSession()
	if reset {
		if err := cache.Clear(ctx); err != nil {
			return err
		}
	} else {
		saved, err := cache.Load(ctx)
		if err != nil {
			return err
		}
		session.Restore(saved)
	}

	svc := c.newService(nil)
	scanner := bufio.NewScanner(c.in)
	for {
		if err := c.collectAnswers(ctx, session, cache, scanner); err != nil {
			return err
		}

		p, err := svc.PredictSleep(ctx, session.Answers())
		var fe *features.FieldError
		if errors.As(err, &fe) {
			// Forget the rejected answer so this and later runs ask for it again.
			prompt, ok := session.Clear(fe.Field)
			if !ok {
				return err
			}
			if err := cache.Save(ctx, map[string]string{prompt.ID.String(): ""}); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(c.out, "Invalid answer %q: %s\n", fe.Value, fe.Reason); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.out, "Sleep quality: %.2f (%s)\n%s\n", p.Value, p.Recommendation.Bucket, p.Recommendation.Text)
		return err
	}
}

// collectAnswers prompts until the session is complete, saving after every answer.
func (c *cli) collectAnswers(ctx context.Context, session *questionnaire.Session, cache *answercache.Cache, scanner *bufio.Scanner) error {
	for {
		prompt, ok := session.CurrentPrompt()
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintf(c.out, "%s\n> ", prompt.Text); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.out)
			return errIncomplete
		}
		if err := session.SubmitAnswer(scanner.Text()); err != nil {
			if errors.Is(err, questionnaire.ErrEmptyAnswer) {
				continue
			}
			return err
		}
		if err := cache.Save(ctx, session.Snapshot()); err != nil {
			return err
		}
	}
}
