package cli

import (
	"context"

	"github.com/spf13/cobra"

	"lte2mqtt/internal/app"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the router once and publish (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTick(cmd.Context(), opts)
		},
	}
}

func runTick(ctx context.Context, opts *options) (err error) {
	a, err := app.NewApp(ctx, opts.configPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = a.Tick(ctx)
	return err
}
