// Package llm - extractor.go describes the JSON shapes requested from the model.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the record shape an analysis stage asks for.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "DifficultyAspects")
	Description string        // One-line description of a single record
	Fields      []SchemaField // Expected fields of each record
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildArrayInstruction renders the output-format block appended to array
// prompts: a JSON array whose elements follow schema.
func BuildArrayInstruction(schema ExtractionSchema) string {
	var sb strings.Builder

	if schema.Description != "" {
		sb.WriteString(schema.Description)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Return ONLY a valid JSON array where every element has this exact structure:\n[\n  {\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  }\n]\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use straight ASCII double quotes for every key and string.\n")
	sb.WriteString("- Return ONLY the JSON array, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}

// --- Predefined Schemas ---

// DifficultySchema describes the five reading-difficulty aspects.
func DifficultySchema(aspects []string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "DifficultyAspects",
		Description: "Produce exactly one element per aspect, in this order: " + strings.Join(aspects, ", ") + ".",
		Fields: []SchemaField{
			{
				Name:        "aspect",
				Description: "One of the aspect names above, spelled exactly",
				Required:    true,
			},
			{
				Name:        "summary",
				Description: "Two or three sentences for a learner deciding whether to read the book",
				Required:    true,
			},
		},
	}
}

// VocabularySchema describes the vocabulary items picked from the sentences.
func VocabularySchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "VocabularyItems",
		Description: "Each element is one word or short phrase copied exactly as it appears in the sentences.",
		Fields: []SchemaField{
			{
				Name:        "word",
				Description: "The word exactly as written in the sentence, without brackets or pronunciation",
				Required:    true,
			},
			{
				Name:        "meaning_en",
				Description: "Short English meaning in this context",
				Required:    true,
			},
			{
				Name:        "part_of_speech",
				Description: "noun, verb, adjective, adverb, phrase, ...",
				Required:    true,
			},
			{
				Name:        "cef_level",
				Description: "One of A1, A2, B1, B2, C1, C2",
				Required:    true,
			},
			{
				Name:        "example_sentence",
				Description: "The sentence the word was taken from",
				Required:    false,
			},
		},
	}
}
