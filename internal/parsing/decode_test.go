package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/novel-lexicon/internal/schemas"
	"github.com/jonathan/novel-lexicon/internal/types"
)

func TestDecode_Vocabulary(t *testing.T) {
	raw := "Sure!\n```json\n[{\"word\": \"hearth [n.]\", \"meaning_en\": \"fireplace\", \"cef_level\": \"b2\"}]\n```"

	var items []types.VocabularyItem
	require.NoError(t, Decode(raw, ShapeArray, schemas.Vocabulary, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "hearth [n.]", items[0].Word)
	assert.Equal(t, "fireplace", items[0].MeaningEn)
	assert.Equal(t, types.CEFLevel("b2"), items[0].CEFLevel)
	assert.Empty(t, items[0].PartOfSpeech)
}

func TestDecode_EmptyFallbackDecodesToEmpty(t *testing.T) {
	var items []types.VocabularyItem
	require.NoError(t, Decode("no json here", ShapeArray, schemas.Vocabulary, &items))
	assert.Empty(t, items)
}

func TestDecode_SyntaxError(t *testing.T) {
	var items []types.VocabularyItem
	err := Decode(`[{"word": "hearth",}]`, ShapeArray, schemas.Vocabulary, &items)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, `[{"word": "hearth",}]`, parseErr.Extracted)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestDecode_SchemaMismatch(t *testing.T) {
	var items []types.VocabularyItem
	err := Decode(`["hearth", "gloaming"]`, ShapeArray, schemas.Vocabulary, &items)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "vocabulary schema")
}

func TestDecode_NoSchema(t *testing.T) {
	var values []int
	require.NoError(t, Decode("[1, 2, 3]", ShapeArray, "", &values))
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestDecodeExtracted_UnmarshalError(t *testing.T) {
	var values []int
	err := DecodeExtracted(`["a"]`, "", &values)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
