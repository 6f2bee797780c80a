package rendering

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/novel-lexicon/internal/types"
)

// Format is a bundle export format.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use json, yaml, markdown or csv)", name)
	}
}

// FormatFromPath picks a format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// Encode writes bundle to w in the given format. CSV exports only the vocabulary.
func Encode(w io.Writer, bundle *types.AnalysisBundle, format Format) error {
	if bundle == nil {
		return &RenderError{Message: "bundle is nil"}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(bundle); err != nil {
			return &RenderError{Message: "failed to encode JSON", Cause: err}
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bundle); err != nil {
			return &RenderError{Message: "failed to encode YAML", Cause: err}
		}
		if err := enc.Close(); err != nil {
			return &RenderError{Message: "failed to flush YAML", Cause: err}
		}
	case FormatMarkdown:
		md, err := RenderMarkdown(bundle)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, md); err != nil {
			return &RenderError{Message: "failed to write Markdown", Cause: err}
		}
	case FormatCSV:
		return WriteVocabularyCSV(w, bundle.Vocabulary)
	default:
		return &RenderError{Message: fmt.Sprintf("unsupported format %q", format)}
	}
	return nil
}

// WriteFile encodes bundle into path, creating parent directories.
func WriteFile(path string, bundle *types.AnalysisBundle, format Format) error {
	var buf bytes.Buffer
	if err := Encode(&buf, bundle, format); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &RenderError{Message: "failed to create output directory", Cause: err}
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &RenderError{Message: "failed to write " + path, Cause: err}
	}
	return nil
}
