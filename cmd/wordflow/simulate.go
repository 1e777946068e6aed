package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vytor/wordflow/internal/config"
	"github.com/vytor/wordflow/internal/models"
	"github.com/vytor/wordflow/internal/srs"
)

var ratingColors = map[models.Rating]*color.Color{
	models.Again: color.New(color.FgRed),
	models.Hard:  color.New(color.FgYellow),
	models.Good:  color.New(color.FgGreen),
	models.Easy:  color.New(color.FgCyan, color.Bold),
}

func newSimulateCommand() *cobra.Command {
	var ratings []string
	var start string
	var schedulerFile string

	command := &cobra.Command{
		Use:   "simulate",
		Short: "Walk one new item through a sequence of ratings",
		Long: "Applies each rating at the moment the item falls due and prints the\n" +
			"resulting schedule. Nothing is stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseRatings(ratings)
			if err != nil {
				return err
			}

			now := time.Now()
			if start != "" {
				if now, err = time.Parse(time.RFC3339, start); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
			}

			cfg := config.Load()
			if schedulerFile != "" {
				cfg.SchedulerConfigPath = schedulerFile
			}
			schedCfg, err := cfg.Scheduler()
			if err != nil {
				return err
			}

			steps := simulate(schedCfg, parsed, now)
			printSimulation(cmd.OutOrStdout(), steps)
			return nil
		},
	}

	flags := command.Flags()
	flags.StringSliceVar(&ratings, "ratings", []string{"good", "good", "good"}, "comma separated ratings: again, hard, good, easy")
	flags.StringVar(&start, "start", "", "RFC 3339 time of the first review (default now)")
	flags.StringVar(&schedulerFile, "scheduler", "", "YAML file with scheduler constants (overrides SCHEDULER_CONFIG)")
	return command
}

type simulationStep struct {
	At     time.Time
	Rating models.Rating
	State  models.ReviewState
}

// simulate rates a fresh item at each successive due time.
func simulate(cfg srs.Config, ratings []models.Rating, start time.Time) []simulationStep {
	st := srs.NewState(cfg, "", "simulated", "", start)
	at := start
	steps := make([]simulationStep, 0, len(ratings))
	for _, r := range ratings {
		st = srs.Schedule(cfg, st, r, at)
		steps = append(steps, simulationStep{At: at, Rating: r, State: st})
		at = st.DueAt
	}
	return steps
}

func parseRatings(in []string) ([]models.Rating, error) {
	out := make([]models.Rating, 0, len(in))
	for _, s := range in {
		r, err := models.ParseRating(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func printSimulation(w io.Writer, steps []simulationStep) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRATING\tINTERVAL\tEASE\tREP\tLAPSES\tDUE")
	for i, s := range steps {
		fmt.Fprintf(tw, "%d\t%s\t%.1fd\t%.2f\t%d\t%d\t%s\n",
			i+1,
			ratingColors[s.Rating].Sprint(s.Rating),
			s.State.IntervalDays,
			s.State.EaseFactor,
			s.State.Repetition,
			s.State.LapseCount,
			s.State.DueAt.Format("2006-01-02 15:04"),
		)
	}
	tw.Flush()
}
