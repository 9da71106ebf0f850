package domain

// ClassificationResult is an ordered list of at most MaxLabelsPerTicket
// vocabulary labels. Reason is nil when at least one label was produced;
// otherwise it explains why the result is empty (ErrParse, ErrValidation,
// ErrBackendUnavailable or a generation error).
type ClassificationResult struct {
	Labels []CategoryLabel
	Reason error
}

func (r ClassificationResult) Empty() bool {
	return len(r.Labels) == 0
}

func (r ClassificationResult) Strings() []string {
	out := make([]string, len(r.Labels))
	for i, l := range r.Labels {
		out[i] = l.String()
	}
	return out
}

// RunStatistics are the counters of one pipeline run. They are owned by
// the run that produced them.
type RunStatistics struct {
	Seen          int
	Classified    int
	Errored       int
	LabelsApplied int

	// Breakdown of Errored and Classified.
	Unclassified int
	Failed       int
	NoOp         int
	// Labels that would have been written in dry-run mode.
	DryRunLabels int
}

// SuccessRate returns Classified/Seen as a percentage, or 0 when nothing
// was seen.
func (s RunStatistics) SuccessRate() float64 {
	if s.Seen == 0 {
		return 0
	}
	return float64(s.Classified) / float64(s.Seen) * 100
}
