package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agenda-rural/internal/app"
	"agenda-rural/internal/model"
	"agenda-rural/internal/repository"
)

func newAskCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the farming assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				answer := c.Advice.Ask(cmd.Context(), strings.Join(args, " "))
				_, err := fmt.Fprintln(cmd.OutOrStdout(), answer)
				return err
			})
		},
	}
}

func newLogCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Read and write the daily journal",
	}
	cmd.AddCommand(newLogAddCommand(open), newLogListCommand(open))
	return cmd
}

func newLogAddCommand(open Opener) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a journal entry (default date: today)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var logDate model.CivilDate
			if date != "" {
				parsed, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				logDate = parsed
			}
			return withContainer(cmd, open, func(c *app.Container) error {
				entry, err := c.Journal.Add(cmd.Context(), strings.Join(args, " "), logDate)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Anotado em %s.\n", entry.LogDate)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "entry date as YYYY-MM-DD")
	return cmd
}

func newLogListCommand(open Opener) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				logs, err := c.Journal.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(logs) == 0 {
					_, _ = fmt.Fprintln(out, "O diário está vazio.")
					return nil
				}
				for _, entry := range logs {
					_, _ = fmt.Fprintf(out, "%s  %s\n", entry.LogDate, entry.Content)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", repository.DefaultLogLimit, "number of entries")
	return cmd
}
