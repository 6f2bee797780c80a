package pipeline

import (
	"strings"

	"github.com/jonathan/novel-lexicon/internal/types"
)

// aspectAliases maps loose aspect names the model tends to produce onto
// the canonical ones, lower-cased.
var aspectAliases = map[string]string{
	"vocab":               "vocabulary",
	"word choice":         "vocabulary",
	"language":            "vocabulary",
	"grammar":             "syntax",
	"sentence structure":  "syntax",
	"style":               "syntax",
	"theme":               "themes",
	"culture":             "cultural context",
	"cultural":            "cultural context",
	"cultural background": "cultural context",
	"content warnings":    "content warning",
	"trigger warning":     "content warning",
	"trigger warnings":    "content warning",
}

func aspectKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimRight(key, ":.")
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if alias, ok := aspectAliases[key]; ok {
		return alias
	}
	return key
}

// CanonicalizeAspects returns exactly the five canonical aspects in fixed
// order. Matching is case-insensitive; the first entry for an aspect wins,
// missing aspects get an empty summary and unknown aspects are dropped.
func CanonicalizeAspects(raw []types.DifficultyAspect) []types.DifficultyAspect {
	summaries := make(map[string]string, len(raw))
	for _, a := range raw {
		key := aspectKey(a.Aspect)
		if _, seen := summaries[key]; seen {
			continue
		}
		summaries[key] = strings.TrimSpace(a.Summary)
	}

	canonical := types.DifficultyAspects()
	out := make([]types.DifficultyAspect, 0, len(canonical))
	for _, name := range canonical {
		out = append(out, types.DifficultyAspect{
			Aspect:  name,
			Summary: summaries[strings.ToLower(name)],
		})
	}
	return out
}
