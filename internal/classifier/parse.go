package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"ticketlabeler/internal/domain"
)

const (
	jsonFence = "```json"
	fence     = "```"
)

// ParseLabels reduces raw model output to at most max vocabulary labels.
// Stages run in order: fence strip, bracket isolation, JSON decode,
// vocabulary filter, cap. The error wraps domain.ErrParse when no JSON
// array could be decoded and domain.ErrValidation when the array held no
// vocabulary label.
func ParseLabels(raw string, vocab *domain.Vocabulary, max int) ([]domain.CategoryLabel, error) {
	if max < 1 || max > domain.MaxLabelsPerTicket {
		max = domain.MaxLabelsPerTicket
	}

	text := stripFence(strings.TrimSpace(raw))

	candidate, ok := isolateArray(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array in %q", domain.ErrParse, preview(text))
	}

	var entries []any
	if err := json.Unmarshal([]byte(candidate), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v in %q", domain.ErrParse, err, preview(candidate))
	}

	labels := filterVocabulary(entries, vocab)
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, preview(candidate))
	}
	if len(labels) > max {
		labels = labels[:max]
	}
	return labels, nil
}

// stripFence returns the body of the first fenced block, preferring a
// ```json fence. Text without fences is returned unchanged.
func stripFence(text string) string {
	var rest string
	if idx := strings.Index(text, jsonFence); idx >= 0 {
		rest = text[idx+len(jsonFence):]
	} else if idx := strings.Index(text, fence); idx >= 0 {
		rest = text[idx+len(fence):]
	} else {
		return text
	}
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func isolateArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// filterVocabulary keeps string entries that are exact vocabulary labels
// after trimming, in order, without duplicates.
func filterVocabulary(entries []any, vocab *domain.Vocabulary) []domain.CategoryLabel {
	var out []domain.CategoryLabel
	seen := make(map[string]bool)
	for _, e := range entries {
		s, ok := e.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if seen[s] || !vocab.Contains(s) {
			continue
		}
		seen[s] = true
		out = append(out, domain.CategoryLabel(s))
	}
	return out
}

func preview(s string) string {
	const max = 200
	if len(s) > max {
		return domain.ClipUTF8(s, max) + "..."
	}
	return s
}
