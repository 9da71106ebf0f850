package main

import (
	"fmt"
	"os"

	"ticketlabeler/internal/cli"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Explain(err))
		os.Exit(1)
	}
}
