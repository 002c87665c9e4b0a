package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"agenda-rural/internal/app"
	"agenda-rural/internal/model"
	"agenda-rural/internal/service"
)

func plain(s string) string { return s }

func newUpcomingCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "List pending dated tasks for the next 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				out := cmd.OutOrStdout()
				tasks := c.Agenda.Upcoming()
				if len(tasks) == 0 {
					_, _ = fmt.Fprintln(out, "Nenhuma tarefa nos próximos 7 dias.")
					return nil
				}
				writeTasks(out, tasks, true)
				return nil
			})
		},
	}
}

func newMonthCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show the tasks relevant for a month (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				now := c.Agenda.Now()
				year, month := now.Year(), now.Month()
				if len(args) == 1 {
					parsed, err := time.Parse("2006-01", args[0])
					if err != nil {
						return fmt.Errorf("month must be YYYY-MM: %w", err)
					}
					year, month = parsed.Year(), parsed.Month()
				}

				grid := c.Agenda.Calendar(year, month)
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s de %d\n\n", grid.MonthName, grid.Year)

				_, _ = fmt.Fprintln(out, "Sazonais:")
				if len(grid.Seasonal) == 0 {
					_, _ = fmt.Fprintln(out, "  (nenhuma)")
				}
				writeTasks(out, grid.Seasonal, false)

				_, _ = fmt.Fprintln(out, "\nCom data:")
				found := false
				for _, cell := range grid.Days {
					if len(cell.Tasks) == 0 {
						continue
					}
					found = true
					_, _ = fmt.Fprintf(out, "  %02d\n", cell.Day)
					for _, task := range cell.Tasks {
						_, _ = fmt.Fprintf(out, "    %s\n", service.FormatTaskLine(task, plain, false))
					}
				}
				if !found {
					_, _ = fmt.Fprintln(out, "  (nenhuma)")
				}
				return nil
			})
		},
	}
}

func newReportCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print today's summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), c.Digest.Build().Text())
				return err
			})
		},
	}
}

func writeTasks(out io.Writer, tasks []model.Task, withDate bool) {
	for _, task := range tasks {
		_, _ = fmt.Fprintf(out, "  %s  [%s]\n", service.FormatTaskLine(task, plain, withDate), shortID(task.ID))
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
