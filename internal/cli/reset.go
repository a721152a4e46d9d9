package cli

import (
	"github.com/spf13/cobra"

	"lte2mqtt/internal/app"
)

func newResetCmd(opts *options) *cobra.Command {
	var monthly bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Zero the daily totals now and clear the router counters",
		Long: `Zero the daily totals now: baseline variables are set to 0, the daily devices
publish 0 and the router's traffic statistics are cleared. With --monthly the
monthly devices publish 0 as well.

Examples:
  lte2mqtt reset
  lte2mqtt reset --monthly -c ./config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := app.NewApp(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); err == nil {
					err = cerr
				}
			}()
			return a.Reset(cmd.Context(), monthly)
		},
	}
	cmd.Flags().BoolVar(&monthly, "monthly", false, "also zero the monthly totals")
	return cmd
}
