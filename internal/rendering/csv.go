package rendering

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/jonathan/novel-lexicon/internal/types"
)

// VocabularyCSVHeader is the header row of the vocabulary export.
var VocabularyCSVHeader = []string{"word", "meaning_en", "part_of_speech", "cef_level", "example_sentence"}

// WriteVocabularyCSV writes one row per item, in order, after the header.
func WriteVocabularyCSV(w io.Writer, items []types.VocabularyItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(VocabularyCSVHeader); err != nil {
		return &RenderError{Message: "failed to write CSV header", Cause: err}
	}
	for _, item := range items {
		record := []string{
			item.Word,
			item.MeaningEn,
			item.PartOfSpeech,
			string(item.CEFLevel),
			item.ExampleSentence,
		}
		if err := cw.Write(record); err != nil {
			return &RenderError{Message: "failed to write CSV row", Cause: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &RenderError{Message: "failed to flush CSV", Cause: err}
	}
	return nil
}

// VocabularyCSV renders the export as a string.
func VocabularyCSV(items []types.VocabularyItem) (string, error) {
	var buf bytes.Buffer
	if err := WriteVocabularyCSV(&buf, items); err != nil {
		return "", err
	}
	return buf.String(), nil
}
