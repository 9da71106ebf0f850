package classifier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ticketlabeler/internal/domain"
)

// VocabularyFile is the YAML layout of a vocabulary extension file:
//
//	labels:
//	  - name: optimization
//	    definition: Performance improvements and refactoring
//	examples:
//	  - title: Optimize database queries
//	    labels: [optimization]
type VocabularyFile struct {
	Labels []struct {
		Name       string `yaml:"name"`
		Definition string `yaml:"definition"`
	} `yaml:"labels"`
	Examples []struct {
		Title  string   `yaml:"title"`
		Labels []string `yaml:"labels"`
	} `yaml:"examples"`
}

// LoadVocabulary returns the built-in vocabulary extended with the labels
// and examples in path. An empty path yields the built-in vocabulary.
func LoadVocabulary(path string) (*domain.Vocabulary, error) {
	vocab := domain.DefaultVocabulary()
	if strings.TrimSpace(path) == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	var file VocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}
	if err := extendVocabulary(vocab, file); err != nil {
		return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	return vocab, nil
}

func extendVocabulary(vocab *domain.Vocabulary, file VocabularyFile) error {
	for _, l := range file.Labels {
		if strings.TrimSpace(l.Definition) == "" {
			return fmt.Errorf("label %q has no definition", l.Name)
		}
		if err := vocab.Add(domain.CategoryLabel(l.Name), l.Definition); err != nil {
			return err
		}
	}
	for _, ex := range file.Examples {
		labels := make([]domain.CategoryLabel, 0, len(ex.Labels))
		for _, l := range ex.Labels {
			labels = append(labels, domain.CategoryLabel(strings.TrimSpace(l)))
		}
		if err := vocab.AddExample(domain.LabelExample{Title: strings.TrimSpace(ex.Title), Labels: labels}); err != nil {
			return err
		}
	}
	return nil
}
