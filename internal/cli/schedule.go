package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ticketlabeler/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run a labeling pass on every tick of run_schedule",
	Long: `Run full labeling passes on the cron schedule in run_schedule (5 fields,
e.g. "0 9 * * 1-5"). Each pass is independent and a failed pass does not
stop the schedule. Stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sched, err := schedule.Parse(cfg.RunSchedule)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		err = sched.Run(ctx, func(ctx context.Context) error {
			_, err := a.runPass(ctx, cfg.DryRun)
			return err
		})
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.OutOrStdout(), "schedule stopped")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
