// Package report renders the end-of-run summary and delivers it.
package report

import (
	"fmt"
	"strings"

	"ticketlabeler/internal/domain"
)

// FormatRunReport returns the human-readable summary of one run.
func FormatRunReport(stats domain.RunStatistics, dryRun bool) string {
	var b strings.Builder
	if dryRun {
		b.WriteString("Labeling run complete (analysis only, no labels were applied)\n")
	} else {
		b.WriteString("Labeling run complete\n")
	}
	if stats.Seen == 0 {
		b.WriteString("No tickets found, nothing to do.")
		return b.String()
	}

	fmt.Fprintf(&b, "Tickets processed: %d\n", stats.Seen)
	fmt.Fprintf(&b, "Classified: %d", stats.Classified)
	if stats.NoOp > 0 {
		fmt.Fprintf(&b, " (%d already labeled)", stats.NoOp)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Errors: %d", stats.Errored)
	var parts []string
	if stats.Unclassified > 0 {
		parts = append(parts, fmt.Sprintf("%d unclassified", stats.Unclassified))
	}
	if stats.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", stats.Failed))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")

	if dryRun {
		fmt.Fprintf(&b, "Labels that would be applied: %d\n", stats.DryRunLabels)
	} else {
		fmt.Fprintf(&b, "Labels applied: %d\n", stats.LabelsApplied)
	}
	fmt.Fprintf(&b, "Success rate: %.1f%%", stats.SuccessRate())
	return b.String()
}

// FormatHeader is the start-of-run banner.
func FormatHeader(store, scope, scopeName, provider, model string) string {
	target := "all tickets"
	if scope != "" {
		target = scope
		if scopeName != "" {
			target = fmt.Sprintf("%s (%s)", scope, scopeName)
		}
	}
	return fmt.Sprintf("Labeling %s on %s with %s model %s", target, store, provider, model)
}
