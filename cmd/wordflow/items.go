package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vytor/wordflow/internal/models"
)

func newEnrollCommand() *cobra.Command {
	var collection string

	command := &cobra.Command{
		Use:   "enroll LEARNER ITEM...",
		Short: "Add items to a learner's review schedule",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			for _, itemID := range args[1:] {
				_, created, err := a.Reviews.Enroll(ctx, args[0], itemID, collection)
				if err != nil {
					return err
				}
				if created {
					color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "enrolled %s\n", itemID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "already enrolled %s\n", itemID)
				}
			}
			return nil
		},
	}
	command.Flags().StringVar(&collection, "collection", "", "collection the items belong to")
	return command
}

func newReviewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "review LEARNER ITEM RATING",
		Short: "Record one rating for an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := models.ParseRating(args[2])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			// Close drains the streak update before the database closes.
			ctx := context.Background()
			a.StatsPool.Start(ctx)

			st, err := a.Reviews.Record(ctx, args[0], args[1], r, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: next in %.1f days (ease %.2f, due %s)\n",
				args[1], ratingColors[r].Sprint(r), st.IntervalDays, st.EaseFactor, st.DueAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
	return command
}

func newDueCommand() *cobra.Command {
	var collection string
	var limit int

	command := &cobra.Command{
		Use:   "due LEARNER",
		Short: "List items due for review now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			due, err := a.Reviews.Due(context.Background(), args[0], collection, limit)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
				return nil
			}
			for _, st := range due {
				line := fmt.Sprintf("%-24s interval=%.1fd ease=%.2f lapses=%d", st.ItemID, st.IntervalDays, st.EaseFactor, st.LapseCount)
				if st.InLearning() {
					color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), line)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			return nil
		},
	}
	command.Flags().StringVar(&collection, "collection", "", "restrict to one collection")
	command.Flags().IntVar(&limit, "limit", 0, "maximum number of items (0 for all)")
	return command
}

func newStatsCommand() *cobra.Command {
	var collection string

	command := &cobra.Command{
		Use:   "stats LEARNER",
		Short: "Show today's review statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			today, err := a.Stats.Today(context.Background(), args[0], collection)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			bold.Fprintf(w, "%s\n", today.Day.Format("Monday, 2006-01-02"))
			fmt.Fprintf(w, "reviewed   %d (again %d, hard %d, good %d, easy %d)\n",
				today.Reviewed, today.Tally.Again, today.Tally.Hard, today.Tally.Good, today.Tally.Easy)
			fmt.Fprintf(w, "accuracy   %d%%\n", today.Accuracy)
			fmt.Fprintf(w, "due        %d\n", today.DueCount)
			fmt.Fprintf(w, "learned    %d\n", today.WordsLearned)
			fmt.Fprintf(w, "streak     %d days\n", today.DailyStreak)
			fmt.Fprintf(w, "avg/day    %d (last 7 days)\n", today.AvgPerDay)
			if today.LeechCount > 0 {
				color.New(color.FgRed).Fprintf(w, "leeches    %d\n", today.LeechCount)
			}
			return nil
		},
	}
	command.Flags().StringVar(&collection, "collection", "", "restrict to one collection")
	return command
}
