package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-lexicon/internal/config"
	"github.com/jonathan/novel-lexicon/internal/highlight"
	"github.com/jonathan/novel-lexicon/internal/llm"
	"github.com/jonathan/novel-lexicon/internal/observability"
	"github.com/jonathan/novel-lexicon/internal/pipeline"
	"github.com/jonathan/novel-lexicon/internal/pipeline/stages"
	"github.com/jonathan/novel-lexicon/internal/rendering"
	"github.com/jonathan/novel-lexicon/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [title]",
	Short: "Analyze a novel by title",
	Long: `Runs the four analysis stages for a novel: plot summary, reading difficulty, example sentences and vocabulary.

Configuration is read from --config and the environment. Flags override both.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeTitle            string
	analyzeAPIKey           string
	analyzeWebResearch      bool
	analyzeElaborate        bool
	analyzeSequential       bool
	analyzeSummarySentences int
	analyzeSentenceCount    int
	analyzeVocabularyCount  int
	analyzeMarker           string
	analyzeOut              string
	analyzeFormat           string
	analyzeCSV              string
	analyzeQuiet            bool
	analyzeTimeout          time.Duration
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTitle, "title", "t", "", "Novel title (or pass it as the first argument)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	analyzeCmd.Flags().BoolVar(&analyzeWebResearch, "web-research", true, "Ground the difficulty assessment in web search results")
	analyzeCmd.Flags().BoolVar(&analyzeElaborate, "elaborate", false, "Rewrite the summary with the advanced model")
	analyzeCmd.Flags().BoolVar(&analyzeSequential, "sequential", false, "Run the stages one after another")
	analyzeCmd.Flags().IntVar(&analyzeSummarySentences, "summary-sentences", 0, "Sentences in the plot summary")
	analyzeCmd.Flags().IntVar(&analyzeSentenceCount, "sentences", 0, "Number of example sentences")
	analyzeCmd.Flags().IntVar(&analyzeVocabularyCount, "vocabulary", 0, "Number of vocabulary items")
	analyzeCmd.Flags().StringVar(&analyzeMarker, "marker", "", "Highlight style: html, markdown or ansi")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the bundle to this file (format from extension unless --format)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "Output format: json, yaml, markdown or csv")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "Also write the vocabulary table to this CSV file")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "Do not print progress")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Abort the run after this long (0 = no limit)")

	rootCmd.AddCommand(analyzeCmd)
}

// applyAnalyzeFlags copies explicitly set flags onto cfg.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.Gemini.APIKey = analyzeAPIKey
	}
	if flags.Changed("web-research") {
		cfg.Analysis.WebResearch = analyzeWebResearch
	}
	if flags.Changed("elaborate") {
		cfg.Analysis.Elaborate = analyzeElaborate
	}
	if flags.Changed("sequential") {
		cfg.Analysis.Sequential = analyzeSequential
	}
	if flags.Changed("summary-sentences") {
		cfg.Analysis.SummarySentences = analyzeSummarySentences
	}
	if flags.Changed("sentences") {
		cfg.Analysis.SentenceCount = analyzeSentenceCount
	}
	if flags.Changed("vocabulary") {
		cfg.Analysis.VocabularyCount = analyzeVocabularyCount
	}
	if flags.Changed("marker") {
		cfg.Analysis.Marker = analyzeMarker
	}
}

// resolveTitle prefers the positional argument over --title.
func resolveTitle(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return analyzeTitle
}

// analysisContext returns a context canceled on SIGINT, SIGTERM or timeout.
func analysisContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	format, err := outputFormat(analyzeOut, analyzeFormat)
	if err != nil {
		return err
	}

	ctx, cancel := analysisContext(cmd.Context(), analyzeTimeout)
	defer cancel()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	progress := observability.NewPrinter(cmd.ErrOrStderr())

	opts := pipeline.OptionsFromConfig(cfg)
	opts.Title = resolveTitle(args)
	opts.Logger = log
	opts.CredentialPresent = cfg.HasGeminiKey()
	if !analyzeQuiet {
		opts.OnProgress = progress.PrintProgress
	}
	// markup meant for a file would garble the terminal
	if format == "" && !cmd.Flags().Changed("marker") && isTerminal(cmd) {
		opts.Marker = highlight.ANSIMarker
	}

	var completer llm.Completer
	if opts.CredentialPresent {
		client, err := pipeline.NewGeminiCompleter(ctx, cfg, "", log)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close completion client", "error", err)
			}
		}()
		completer = client
	}

	bundle, err := pipeline.Run(ctx, completer, opts)
	if err != nil {
		return err
	}

	if err := writeOutputs(cmd, printer, bundle, format); err != nil {
		return err
	}

	if n := len(stages.Ordered()); len(bundle.StageErrors) >= n {
		return fmt.Errorf("all %d stages failed", n)
	}
	return nil
}

// outputFormat picks the export format from --format or the --out extension.
// An empty result means print boxes to the terminal.
func outputFormat(out, name string) (rendering.Format, error) {
	if strings.TrimSpace(name) != "" {
		return rendering.ParseFormat(name)
	}
	if out != "" {
		return rendering.FormatFromPath(out), nil
	}
	return "", nil
}

// writeOutputs prints or exports the bundle as requested.
func writeOutputs(cmd *cobra.Command, printer *observability.Printer, bundle *types.AnalysisBundle, format rendering.Format) error {
	switch {
	case analyzeOut != "":
		if err := rendering.WriteFile(analyzeOut, bundle, format); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s)\n", analyzeOut, format)
		printer.PrintProblems(bundle.Warnings, bundle.StageErrors)
	case format != "":
		if err := rendering.Encode(cmd.OutOrStdout(), bundle, format); err != nil {
			return err
		}
	default:
		printer.PrintBundle(bundle)
	}

	if analyzeCSV != "" {
		if err := rendering.WriteFile(analyzeCSV, bundle, rendering.FormatCSV); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", analyzeCSV)
	}
	return nil
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
