package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the ticket store and the text generation backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		var failed int
		if err := a.store.CheckConnectivity(cmd.Context()); err != nil {
			fmt.Fprintf(out, "%-10s FAIL  %v\n", cfg.Store, err)
			failed++
		} else {
			fmt.Fprintf(out, "%-10s OK\n", cfg.Store)
		}
		if err := a.classifier.CheckConnectivity(cmd.Context()); err != nil {
			fmt.Fprintf(out, "%-10s FAIL  %v\n", a.classifier.Provider(), err)
			failed++
		} else {
			fmt.Fprintf(out, "%-10s OK    model=%s\n", a.classifier.Provider(), a.classifier.Model())
		}
		if failed > 0 {
			return fmt.Errorf("%d connectivity check(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
