// Package cli wires configuration, ticket stores, the classifier and the
// pipeline into the ticketlabeler commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ticketlabeler/internal/config"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ticketlabeler",
	Short: "Classify issue tracker tickets and add missing category labels",
	Long: `ticketlabeler fetches every ticket from Jira, GitLab or GitHub, asks a text
generation model to pick up to two labels from a closed vocabulary, and adds
the labels each ticket does not have yet. Existing labels are never removed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ticketlabeler %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	return config.LoadConfig(configPath)
}
