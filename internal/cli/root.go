// Package cli provides the agendarural command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"agenda-rural/internal/app"
)

// Opener builds the container for a command. Commands that need no state
// (help, version) never call it.
type Opener func(ctx context.Context) (*app.Container, error)

// NewRootCommand creates the root command.
func NewRootCommand(open Opener, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "agendarural",
		Short: "Agenda da chácara: tarefas rurais, diário e assistente",
		Long: `agendarural keeps the chores of a small rural property: dated and
seasonal tasks with recurrence, a daily journal and a farming assistant.

Run "agendarural serve" to start the HTTP API, the Telegram bot and the
periodic reload. The other commands work directly on the configured store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(open),
		newUpcomingCommand(open),
		newMonthCommand(open),
		newReportCommand(open),
		newAskCommand(open),
		newLogCommand(open),
	)
	return root
}

// withContainer opens the container, runs fn and always closes it.
func withContainer(cmd *cobra.Command, open Opener, fn func(c *app.Container) error) error {
	c, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}
