package domain

import (
	"fmt"
	"strings"
)

// CategoryLabel is a label from the closed classification vocabulary.
type CategoryLabel string

const (
	LabelInitiative       CategoryLabel = "initiative"
	LabelMaintenance      CategoryLabel = "maintenance"
	LabelCostOptimization CategoryLabel = "cost optimization"
)

// MaxLabelsPerTicket caps how many labels a single classification may carry.
const MaxLabelsPerTicket = 2

func (l CategoryLabel) String() string {
	return string(l)
}

// LabelDefinition pairs a vocabulary label with the one-line definition
// shown to the model.
type LabelDefinition struct {
	Label      CategoryLabel
	Definition string
}

// LabelExample is a worked example embedded in the prompt.
type LabelExample struct {
	Title  string
	Labels []CategoryLabel
}

// Vocabulary is the closed set of labels the classifier may emit. Order is
// the order definitions were added and is used verbatim in prompts.
type Vocabulary struct {
	defs     []LabelDefinition
	examples []LabelExample
	index    map[CategoryLabel]bool
}

// DefaultVocabulary returns the built-in labels and examples.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{index: make(map[CategoryLabel]bool)}
	_ = v.Add(LabelInitiative, "New features, projects, business initiatives")
	_ = v.Add(LabelMaintenance, "Maintenance tasks, minor fixes, bug fixes, code cleanup, upgrades")
	_ = v.Add(LabelCostOptimization, "Reducing infrastructure, licensing or operational spend")
	v.examples = []LabelExample{
		{Title: "Login not working", Labels: []CategoryLabel{LabelMaintenance}},
		{Title: "Implement new dashboard", Labels: []CategoryLabel{LabelInitiative}},
		{Title: "Downsize idle staging database instances", Labels: []CategoryLabel{LabelCostOptimization}},
		{Title: "Upgrade billing service and drop unused paid add-ons", Labels: []CategoryLabel{LabelMaintenance, LabelCostOptimization}},
	}
	return v
}

// Add registers a new label. Names are trimmed; empty and duplicate names
// are rejected.
func (v *Vocabulary) Add(label CategoryLabel, definition string) error {
	name := CategoryLabel(strings.TrimSpace(string(label)))
	if name == "" {
		return fmt.Errorf("vocabulary label must not be empty")
	}
	if v.index[name] {
		return fmt.Errorf("duplicate vocabulary label %q", name)
	}
	v.index[name] = true
	v.defs = append(v.defs, LabelDefinition{Label: name, Definition: strings.TrimSpace(definition)})
	return nil
}

// AddExample appends a worked example. Every label in it must already be in
// the vocabulary.
func (v *Vocabulary) AddExample(ex LabelExample) error {
	if strings.TrimSpace(ex.Title) == "" {
		return fmt.Errorf("vocabulary example title must not be empty")
	}
	if len(ex.Labels) == 0 {
		return fmt.Errorf("vocabulary example %q has no labels", ex.Title)
	}
	for _, l := range ex.Labels {
		if !v.Contains(string(l)) {
			return fmt.Errorf("vocabulary example %q uses unknown label %q", ex.Title, l)
		}
	}
	v.examples = append(v.examples, ex)
	return nil
}

// Contains reports whether s is exactly a vocabulary label. No case folding
// or other coercion is applied.
func (v *Vocabulary) Contains(s string) bool {
	if v == nil {
		return false
	}
	return v.index[CategoryLabel(s)]
}

func (v *Vocabulary) Definitions() []LabelDefinition {
	out := make([]LabelDefinition, len(v.defs))
	copy(out, v.defs)
	return out
}

func (v *Vocabulary) Examples() []LabelExample {
	out := make([]LabelExample, len(v.examples))
	copy(out, v.examples)
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.defs)
}
