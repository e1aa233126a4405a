package intent

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed examples.yaml
var builtinExamples []byte

// Examples are the canonical phrases of one intent.
type Examples struct {
	Intent  Intent   `mapstructure:"intent" yaml:"intent"`
	Phrases []string `mapstructure:"phrases" yaml:"phrases"`
}

// ExampleSet lists intents in tie-break order.
type ExampleSet []Examples

// DefaultExamples returns the built-in example set: exit, qualify, see_jobs, show_detail.
func DefaultExamples() ExampleSet {
	var set ExampleSet
	if err := yaml.Unmarshal(builtinExamples, &set); err != nil {
		panic(fmt.Sprintf("built-in intent examples: %v", err))
	}
	return set
}

// Validate checks that every entry names a known intent once and has at least one phrase.
func (s ExampleSet) Validate() error {
	if len(s) == 0 {
		return errors.New("intent example set is empty")
	}

	seen := make(map[Intent]struct{}, len(s))
	for _, ex := range s {
		if !ex.Intent.Classifiable() {
			return fmt.Errorf("unknown intent %q", ex.Intent)
		}
		if _, ok := seen[ex.Intent]; ok {
			return fmt.Errorf("intent %q listed twice", ex.Intent)
		}
		seen[ex.Intent] = struct{}{}

		phrases := 0
		for _, p := range ex.Phrases {
			if strings.TrimSpace(p) != "" {
				phrases++
			}
		}
		if phrases == 0 {
			return fmt.Errorf("intent %q has no example phrases", ex.Intent)
		}
	}

	return nil
}
