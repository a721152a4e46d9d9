// Package cli implements the lte2mqtt command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"lte2mqtt/internal/domoticz"
)

const defaultConfigPath = "/etc/lte2mqtt/config.yaml"

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitStateStatus = 2
)

type options struct {
	configPath string
}

// NewRootCmd builds the command tree. Running it without a subcommand
// performs one tick.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "lte2mqtt",
		Short: "Poll an LTE router and publish signal and traffic to Domoticz over MQTT",
		Long: `lte2mqtt reads signal quality and traffic counters from a Huawei LTE router,
keeps daily and monthly traffic totals and publishes everything to Domoticz
over MQTT. It runs once per invocation; schedule it with cron or a systemd
timer (every 5 minutes by default).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTick(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath,
		"config file path (.json, .yaml, .yml or .toml)")

	root.AddCommand(
		newRunCmd(opts),
		newResetCmd(opts),
		newHistoryCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		cmd.PrintErrln("Error:", err)
	}
	return ExitCode(err)
}

// ExitCode maps an error to the process exit code: 2 when the state store
// answered with an unexpected HTTP status, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var se *domoticz.StatusError
	if errors.As(err, &se) {
		return ExitStateStatus
	}
	return ExitFailure
}
