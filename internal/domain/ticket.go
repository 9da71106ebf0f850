package domain

// Ticket is an issue-store record as seen by the labeler. Description is nil
// when the store has no description, which is different from an empty one.
type Ticket struct {
	Key         string
	Summary     string
	Description *string
	Labels      []string
}

// LabelDelta returns the suggested labels that are not yet on the ticket,
// preserving suggestion order and dropping duplicates.
func LabelDelta(current []string, suggested []CategoryLabel) []string {
	present := make(map[string]bool, len(current))
	for _, l := range current {
		present[l] = true
	}
	var out []string
	for _, s := range suggested {
		name := s.String()
		if present[name] {
			continue
		}
		present[name] = true
		out = append(out, name)
	}
	return out
}
