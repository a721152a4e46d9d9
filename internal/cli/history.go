package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lte2mqtt/internal/app"
	"lte2mqtt/internal/config"
	"lte2mqtt/internal/storage"
	logx "lte2mqtt/pkg/logx"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent ticks from local storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			st, err := app.OpenHistory(cfg, logx.NewConsole(cfg.Logging.Level))
			if err != nil {
				if errors.Is(err, storage.ErrDisabled) {
					return fmt.Errorf("history needs storage.driver in %s", opts.configPath)
				}
				return err
			}
			defer st.Close()

			recs, err := st.RecentTicks(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), recs, time.Now())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of ticks to show")
	return cmd
}

func printHistory(w io.Writer, recs []storage.TickRecord, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tDAILY DL/UL GB\tMONTHLY DL/UL GB\tAVG DL/UL\tFLAGS")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s / %s\t%s / %s\t%.2f / %.2f\t%s\n",
			humanize.RelTime(r.At, now, "ago", "from now"),
			humanize.Ftoa(r.DailyDownloadGB), humanize.Ftoa(r.DailyUploadGB),
			humanize.Ftoa(r.MonthlyDownloadGB), humanize.Ftoa(r.MonthlyUploadGB),
			r.AverageDownloadBps, r.AverageUploadBps,
			flags(r),
		)
	}
	return tw.Flush()
}

func flags(r storage.TickRecord) string {
	s := ""
	if r.Reset.MonthlyReset {
		s += "M"
	} else if r.Reset.DailyReset {
		s += "D"
	}
	if r.Anomaly() {
		s += "!"
	}
	if s == "" {
		return "-"
	}
	return s
}
