package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ticketlabeler/internal/storage/sqlite"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent label applications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.HistoryEnabled() {
			return fmt.Errorf("history is disabled (db_path is %q)", cfg.DBPath)
		}
		store, err := sqlite.InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to init database: %w", err)
		}
		defer store.Close()

		apps, err := store.RecentLabelApplications(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(apps) == 0 {
			fmt.Fprintln(out, "No labels applied yet.")
			return nil
		}
		for _, app := range apps {
			fmt.Fprintf(out, "%s  %-20s %-30s %s/%s\n",
				app.AppliedAt.Local().Format("2006-01-02 15:04"),
				app.TicketKey,
				strings.Join(app.Labels, ", "),
				app.Provider,
				app.Model,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
