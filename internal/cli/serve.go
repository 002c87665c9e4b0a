package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"agenda-rural/internal/app"
)

func newServeCommand(open Opener) *cobra.Command {
	var addr string
	var noBot bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the scheduled reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.Config.HTTPAddr
			}
			code, err := serve(cmd.Context(), c, addr, !noBot)
			if err != nil {
				_ = c.Close()
				return err
			}
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from HTTP_ADDR)")
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "do not start the Telegram bot")
	return cmd
}

// serve starts every surface and blocks until a shutdown signal has been
// handled. It returns the process exit code.
func serve(ctx context.Context, c *app.Container, addr string, withBot bool) (int, error) {
	log := c.Log

	if err := c.ScheduleReload(); err != nil {
		return 1, err
	}

	var telegram interface{ Stop() }
	if withBot {
		b, err := c.Bot()
		if err != nil {
			return 1, err
		}
		if b != nil {
			telegram = b
			go func() {
				if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("bot stopped with error")
				}
			}()
		} else {
			log.Info("TELEGRAM_TOKEN not set, bot disabled")
		}
	}

	server := c.HTTPServer()
	go func() {
		if err := server.Listen(addr); err != nil {
			log.WithError(err).Error("http server stopped with error")
		}
	}()

	c.Scheduler.Start()
	log.WithField("store", c.Store.Name()).Info("agenda started")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		c.Config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"agenda": func(ctx context.Context) error {
				log.Info("graceful shutdown initiated")
				var errs []error
				if telegram != nil {
					telegram.Stop()
				}
				if err := server.Shutdown(ctx); err != nil {
					errs = append(errs, fmt.Errorf("http: %w", err))
				}
				if err := c.Scheduler.Stop(ctx); err != nil {
					errs = append(errs, fmt.Errorf("scheduler: %w", err))
				}
				if err := c.Close(); err != nil {
					errs = append(errs, err)
				}
				return errors.Join(errs...)
			},
		},
	)

	code := <-wait
	log.WithField("exit_code", code).Info("agenda stopped")
	return code, nil
}
