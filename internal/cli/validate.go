package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lte2mqtt/internal/config"
	logx "lte2mqtt/pkg/logx"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file without contacting any server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logx.NewConsole(cfg.Logging.Level).Debug("effective config", config.Summary(cfg)...)
			fmt.Fprintf(cmd.OutOrStdout(), "VALID: %s (backend %s, schedule %q)\n",
				opts.configPath, cfg.State.Backend, cfg.Tick.Schedule)
			return nil
		},
	}
}
