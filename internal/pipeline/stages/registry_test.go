package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdered(t *testing.T) {
	defs := Ordered()

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{Summary, Difficulty, Sentences, Vocabulary}, names)
}

func TestRegistry_NamesMatchKeys(t *testing.T) {
	for key, def := range StageRegistry {
		assert.Equal(t, key, def.Name)
		assert.NotEmpty(t, def.Category)
		for _, dep := range def.Dependencies {
			_, ok := StageRegistry[dep]
			assert.True(t, ok, "dependency %s of %s is not registered", dep, key)
		}
	}
}

func TestValidateDependencies(t *testing.T) {
	done := map[string]bool{}
	completed := func(stage string) bool { return done[stage] }

	err := ValidateDependencies(completed, Vocabulary)
	require.Error(t, err)

	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, Vocabulary, depErr.Stage)
	assert.Equal(t, []string{Sentences}, depErr.MissingDependencies)

	done[Sentences] = true
	assert.NoError(t, ValidateDependencies(completed, Vocabulary))
	assert.NoError(t, ValidateDependencies(completed, Summary))
}

func TestValidateDependencies_UnknownStage(t *testing.T) {
	err := ValidateDependencies(func(string) bool { return true }, "translate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestGet(t *testing.T) {
	def, ok := Get(Difficulty)
	require.True(t, ok)
	assert.True(t, def.WebAugmented)
	assert.True(t, def.JSONOutput)

	_, ok = Get("missing")
	assert.False(t, ok)
}
