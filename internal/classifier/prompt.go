package classifier

import (
	"fmt"
	"strings"

	"ticketlabeler/internal/domain"
)

const noDescription = "No description provided"

// BuildPrompt renders the classification prompt for one ticket. The output
// depends only on its arguments.
func BuildPrompt(vocab *domain.Vocabulary, summary string, description *string, maxLabels int) string {
	if maxLabels < 1 || maxLabels > domain.MaxLabelsPerTicket {
		maxLabels = domain.MaxLabelsPerTicket
	}
	desc := noDescription
	if description != nil && strings.TrimSpace(*description) != "" {
		desc = strings.TrimSpace(*description)
	}

	var b strings.Builder
	b.WriteString("You are an expert in classifying issue tracker tickets. Analyze the ticket title and description and classify it using the categories below.\n\n")

	b.WriteString("AVAILABLE CATEGORIES:\n")
	for _, d := range vocab.Definitions() {
		fmt.Fprintf(&b, "- %q: %s\n", string(d.Label), d.Definition)
	}

	b.WriteString("\nTICKET TO CLASSIFY:\n")
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(summary))
	fmt.Fprintf(&b, "Description: %s\n", desc)

	b.WriteString("\nINSTRUCTIONS:\n")
	if maxLabels == 1 {
		b.WriteString("1. Select the single most relevant category\n")
	} else {
		fmt.Fprintf(&b, "1. Select 1 to %d of the most relevant categories\n", maxLabels)
	}
	b.WriteString("2. Respond ONLY with a valid JSON array of strings, nothing else\n")
	b.WriteString("3. Use exactly the category names listed above\n")

	b.WriteString("\nREQUIRED RESPONSE FORMAT:\n")
	if maxLabels == 1 {
		b.WriteString("[\"category1\"]\n")
	} else {
		b.WriteString("[\"category1\", \"category2\"]\n")
	}

	examples := vocab.Examples()
	if len(examples) > 0 {
		b.WriteString("\nEXAMPLES:\n")
		for _, ex := range examples {
			labels := ex.Labels
			if len(labels) > maxLabels {
				labels = labels[:maxLabels]
			}
			fmt.Fprintf(&b, "- Title: %q -> %s\n", ex.Title, jsonArray(labels))
		}
	}
	return b.String()
}

func jsonArray(labels []domain.CategoryLabel) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%q", string(l))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
