package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newCaloriesCmd(c *cli) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "calories",
		Short: "Aggregate a subject's biometrics and predict calories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := c.openSamples(ctx)
			if err != nil {
				return err
			}
			svc := c.newService(db)
			p, err := svc.PredictCalories(ctx, subject)
			return errors.Join(err, c.printJSON(p, err), db.Close())
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject identifier")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newDietCmd(c *cli) *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{
		Use:   "diet",
		Short: "Suggest a recipe for a difficulty level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.newService(nil).PredictDiet(cmd.Context(), difficulty)
			return errors.Join(err, c.printJSON(p, err))
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "easy", "easy, medium or hard")
	return cmd
}

func newSeedCmd(c *cli) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Grant access and write synthetic samples for a subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := c.openSamples(ctx)
			if err != nil {
				return err
			}
			return errors.Join(db.Seed(ctx, subject, time.Now()), db.Close())
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "demo", "subject identifier")
	return cmd
}

// printJSON writes v unless the command already failed.
func (c *cli) printJSON(v any, failed error) error {
	if failed != nil {
		return nil
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
