package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-lexicon/internal/highlight"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Mark words in a text",
	Long:  "Wraps every whole-word, case-insensitive occurrence of the given words in the chosen marker. Reads stdin when --in is - or omitted.",
	Args:  cobra.NoArgs,
	RunE:  runHighlight,
}

var (
	highlightIn     string
	highlightWords  []string
	highlightMarker string
)

func init() {
	highlightCmd.Flags().StringVarP(&highlightIn, "in", "i", "-", "Text file to highlight")
	highlightCmd.Flags().StringSliceVarP(&highlightWords, "words", "w", nil, "Comma-separated words to mark")
	highlightCmd.Flags().StringVarP(&highlightMarker, "marker", "m", "html", "Marker style: html, markdown or ansi")
	_ = highlightCmd.MarkFlagRequired("words")

	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, _ []string) error {
	text, err := readInput(cmd, highlightIn)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), highlight.Highlight(text, highlightWords, highlight.MarkerByName(highlightMarker)))
	return err
}

// readInput reads a file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("input file %s is empty", path)
	}
	return string(data), nil
}
