// Package stages defines the analysis stages, their display order and the
// data dependencies between them.
package stages

import (
	"fmt"
	"sort"
)

// Stage names.
const (
	Summary    = "summary"
	Difficulty = "difficulty"
	Sentences  = "sentences"
	Vocabulary = "vocabulary"
)

// Stage categories.
const (
	CategoryOverview = "overview"
	CategoryLanguage = "language"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Order        int      `json:"order"`
	Dependencies []string `json:"dependencies"`
	WebAugmented bool     `json:"web_augmented"`
	JSONOutput   bool     `json:"json_output"`
}

// StageRegistry holds all stage definitions
var StageRegistry = map[string]StageDefinition{
	Summary: {
		Name:         Summary,
		Category:     CategoryOverview,
		Description:  "Plot summary with an optional elaboration pass",
		Order:        1,
		Dependencies: []string{},
	},
	Difficulty: {
		Name:         Difficulty,
		Category:     CategoryOverview,
		Description:  "Five reading-difficulty aspects from web opinions or model knowledge",
		Order:        2,
		Dependencies: []string{},
		WebAugmented: true,
		JSONOutput:   true,
	},
	Sentences: {
		Name:         Sentences,
		Category:     CategoryLanguage,
		Description:  "Literal example sentences used as the highlighting text",
		Order:        3,
		Dependencies: []string{},
	},
	Vocabulary: {
		Name:         Vocabulary,
		Category:     CategoryLanguage,
		Description:  "Hard words from the example sentences, sorted by CEF level",
		Order:        4,
		Dependencies: []string{Sentences},
		JSONOutput:   true,
	},
}

// Get returns the definition of a stage.
func Get(name string) (StageDefinition, bool) {
	def, ok := StageRegistry[name]
	return def, ok
}

// Ordered returns all stages in execution order.
func Ordered() []StageDefinition {
	defs := make([]StageDefinition, 0, len(StageRegistry))
	for _, def := range StageRegistry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Order < defs[j].Order })
	return defs
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of stageName has
// completed according to completed.
func ValidateDependencies(completed func(stage string) bool, stageName string) error {
	def, ok := StageRegistry[stageName]
	if !ok {
		return fmt.Errorf("unknown stage: %s", stageName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed(dep) {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Stage:               stageName,
			MissingDependencies: missing,
		}
	}
	return nil
}
