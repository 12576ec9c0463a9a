package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletscope/internal/handlers/relay"
	"github.com/gabapcia/walletscope/internal/pkg/logger"
)

// relayCommand returns a CLI command that serves the CORS relay.
//
// Usage example:
//
//	walletscope relay --addr :8787
//
// The process runs until it receives an interrupt (SIGINT or SIGTERM).
func relayCommand(factory RelayFactory) *cli.Command {
	return &cli.Command{
		Name:        "relay",
		Description: "Serve the CORS relay that forwards browser requests to allow-listed chain endpoints.",
		Usage:       "Runs the relay. Terminates gracefully on Ctrl+C or termination signals.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				Value:   ":8787",
				Sources: cli.EnvVars("RELAY_ADDR"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler, closeFn, err := factory(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					logger.Warn(ctx, "failed to release relay resources", "error", err)
				}
			}()

			return relay.Serve(ctx, c.String("addr"), handler)
		},
	}
}
