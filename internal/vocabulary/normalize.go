// Package vocabulary normalizes vocabulary items returned by the model.
package vocabulary

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/novel-lexicon/internal/types"
)

var (
	bracketAnnotation = regexp.MustCompile(`\[[^\]]*\]`)
	innerSpace        = regexp.MustCompile(`\s{2,}`)
)

// CleanWord removes square-bracketed annotations such as "[adj.]" or
// "[ˈhɑːθ]" and trims the result.
func CleanWord(word string) string {
	word = bracketAnnotation.ReplaceAllString(word, "")
	word = innerSpace.ReplaceAllString(word, " ")
	return norm.NFC.String(strings.TrimSpace(word))
}

// Rank returns the ordinal of an item's CEF level, C2 highest. Missing or
// unrecognized levels rank as B1.
func Rank(item types.VocabularyItem) int {
	return item.CEFLevel.Rank()
}

// Normalize cleans every item and sorts the result by level, hardest
// first. Items of equal rank keep their input order. Duplicates are kept.
// The input slice is not modified.
func Normalize(items []types.VocabularyItem) []types.VocabularyItem {
	out := make([]types.VocabularyItem, len(items))
	for i, item := range items {
		item.Word = CleanWord(item.Word)
		item.MeaningEn = strings.TrimSpace(item.MeaningEn)
		item.PartOfSpeech = strings.TrimSpace(item.PartOfSpeech)
		item.ExampleSentence = strings.TrimSpace(item.ExampleSentence)
		if level := types.ParseCEFLevel(string(item.CEFLevel)); level.Valid() {
			item.CEFLevel = level
		}
		out[i] = item
	}

	sort.SliceStable(out, func(i, j int) bool {
		return Rank(out[i]) > Rank(out[j])
	})
	return out
}
