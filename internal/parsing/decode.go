package parsing

import (
	"encoding/json"

	"github.com/jonathan/novel-lexicon/internal/schemas"
)

// Decode extracts a JSON span from text, validates it against the named
// embedded schema (skipped when schema is empty) and unmarshals it into out.
// Fields the schema allows to be missing decode as zero values.
func Decode(text string, shape Shape, schema string, out any) error {
	return DecodeExtracted(ExtractJSON(text, shape), schema, out)
}

// DecodeExtracted is Decode without the extraction step.
func DecodeExtracted(extracted, schema string, out any) error {
	if !json.Valid([]byte(extracted)) {
		return &ParseError{Message: "extracted text is not valid JSON", Extracted: extracted}
	}

	if schema != "" {
		if err := schemas.ValidateNamed(schema, extracted); err != nil {
			return &ParseError{Message: "response does not match " + schema + " schema", Extracted: extracted, Cause: err}
		}
	}

	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		return &ParseError{Message: "failed to decode response", Extracted: extracted, Cause: err}
	}
	return nil
}
