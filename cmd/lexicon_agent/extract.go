package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-lexicon/internal/parsing"
	"github.com/jonathan/novel-lexicon/internal/pipeline"
	"github.com/jonathan/novel-lexicon/internal/repair"
	"github.com/jonathan/novel-lexicon/internal/schemas"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Pull JSON out of raw model output",
	Long: `Finds the JSON span in raw model output, optionally validates it against an embedded schema and prints it indented.

With --repair, a failed parse is sent to the lite model once for correction.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

var (
	extractIn     string
	extractSchema string
	extractShape  string
	extractRepair bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractIn, "in", "i", "-", "File with raw model output")
	extractCmd.Flags().StringVarP(&extractSchema, "schema", "s", "", "Validate against an embedded schema: "+strings.Join(schemas.List(), ", "))
	extractCmd.Flags().StringVar(&extractShape, "shape", "array", "Expected JSON shape: array or any")
	extractCmd.Flags().BoolVar(&extractRepair, "repair", false, "Ask the model to fix output that fails to parse")

	rootCmd.AddCommand(extractCmd)
}

func parseShape(name string) (parsing.Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "array":
		return parsing.ShapeArray, nil
	case "any", "object":
		return parsing.ShapeAny, nil
	default:
		return 0, fmt.Errorf("unsupported shape %q (use array or any)", name)
	}
}

func runExtract(cmd *cobra.Command, _ []string) error {
	shape, err := parseShape(extractShape)
	if err != nil {
		return err
	}
	if extractRepair && shape != parsing.ShapeArray {
		return errors.New("--repair only supports --shape array")
	}
	if extractSchema != "" {
		if _, err := schemas.Get(extractSchema); err != nil {
			return err
		}
	}

	text, err := readInput(cmd, extractIn)
	if err != nil {
		return err
	}

	var value any
	if extractRepair {
		value, err = extractWithRepair(cmd, text)
	} else {
		err = parsing.Decode(text, shape, extractSchema, &value)
	}
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), value)
}

// extractWithRepair decodes text, spending at most one repair call.
func extractWithRepair(cmd *cobra.Command, text string) (any, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	if !cfg.HasGeminiKey() {
		return nil, &pipeline.InputError{Field: "credential", Message: "an API key is required for --repair"}
	}

	client, err := pipeline.NewGeminiCompleter(cmd.Context(), cfg, "", log)
	if err != nil {
		return nil, err
	}
	defer client.Close() //nolint:errcheck

	items, outcome, err := repair.DecodeArray[any](cmd.Context(), repair.NewFixer(client), text, extractSchema)
	if err != nil {
		return nil, err
	}
	if outcome.Repaired {
		fmt.Fprintf(cmd.ErrOrStderr(), "Repaired malformed output (%v)\n", outcome.FirstError)
	}
	return items, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
