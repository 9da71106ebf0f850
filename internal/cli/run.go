package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ticketlabeler/internal/report"
)

var (
	runDryRun  bool
	runWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one labeling pass over every ticket",
	Long: `Check that the ticket store and the text generation backend are reachable,
fetch every ticket in scope, classify each one and add the labels it is
missing. With --dry-run nothing is written to the store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun = runDryRun
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = runWorkers
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.runPass(cmd.Context(), cfg.DryRun)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.FormatRunReport(stats, cfg.DryRun))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "classify and report without adding labels")
	runCmd.Flags().IntVar(&runWorkers, "workers", 1, "number of tickets processed concurrently")
	rootCmd.AddCommand(runCmd)
}
