package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/novel-lexicon/internal/pipeline"
	"github.com/jonathan/novel-lexicon/internal/rendering"
)

// resetFlags restores every flag to its default so commands can run
// more than once in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI in-process and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolate keeps the developer's config and key out of a test.
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_SEARCH_API_KEY", "")
}

func TestStagesCommand(t *testing.T) {
	out, _, err := execute(t, "", "stages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "1. summary"))
	assert.Contains(t, lines[3], "vocabulary")
	assert.Contains(t, lines[3], "depends on: sentences")
}

func TestHighlightCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "html",
			args: []string{"highlight", "--words", "hearth,melancholy"},
			want: "The <mark>Hearth</mark> held a quiet <mark>melancholy</mark>.",
		},
		{
			name: "markdown",
			args: []string{"highlight", "-w", "hearth", "-m", "markdown"},
			want: "The **Hearth** held a quiet melancholy.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "The Hearth held a quiet melancholy.", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestHighlightCommand_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.txt")
	require.NoError(t, os.WriteFile(path, []byte("hearths and a hearth"), 0o644))

	out, _, err := execute(t, "", "highlight", "--in", path, "--words", "hearth")
	require.NoError(t, err)
	assert.Equal(t, "hearths and a <mark>hearth</mark>", out)
}

func TestHighlightCommand_RequiresWords(t *testing.T) {
	_, _, err := execute(t, "text", "highlight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "words")
}

func TestExtractCommand(t *testing.T) {
	raw := "Here you go:\n```json\n[{\"word\": \"hearth\", \"meaning_en\": \"fireplace floor\", \"part_of_speech\": \"noun\", \"cef_level\": \"B1\", \"example_sentence\": \"The hearth was cold.\"}]\n```"

	out, _, err := execute(t, raw, "extract", "--schema", "vocabulary")
	require.NoError(t, err)
	assert.Contains(t, out, `"word": "hearth"`)
	assert.True(t, strings.HasPrefix(out, "[\n  {"))
}

func TestExtractCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "unknown schema", stdin: "[]", args: []string{"extract", "--schema", "nope"}, want: "unknown schema"},
		{name: "bad shape", stdin: "[]", args: []string{"extract", "--shape", "tree"}, want: "unsupported shape"},
		{name: "repair needs array", stdin: "{}", args: []string{"extract", "--shape", "any", "--repair"}, want: "--repair only supports"},
		{name: "schema mismatch", stdin: `[{"aspect": 3}]`, args: []string{"extract", "--schema", "difficulty"}, want: "difficulty schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractCommand_RepairNeedsKey(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "not json", "extract", "--repair")
	require.Error(t, err)
	assert.Equal(t, exitInput, exitCode(err))
}

func TestAnalyzeCommand_MissingCredential(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "analyze", "Middlemarch", "--web-research=false")
	require.Error(t, err)

	var inputErr *pipeline.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "credential", inputErr.Field)
	assert.Equal(t, exitInput, exitCode(err))
}

func TestAnalyzeCommand_BadFormat(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "analyze", "Emma", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
	assert.Equal(t, 1, exitCode(err))
}

func TestAnalyzeCommand_ExplicitConfigMissing(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "analyze", "Emma", "--config", "missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		out, name string
		want      rendering.Format
	}{
		{want: ""},
		{out: "emma.yaml", want: rendering.FormatYAML},
		{out: "emma.md", want: rendering.FormatMarkdown},
		{out: "emma.txt", want: rendering.FormatJSON},
		{out: "emma.md", name: "csv", want: rendering.FormatCSV},
	}

	for _, tt := range tests {
		got, err := outputFormat(tt.out, tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "out=%q format=%q", tt.out, tt.name)
	}
}

func TestResolveTitle(t *testing.T) {
	analyzeTitle = "From Flag"
	t.Cleanup(func() { analyzeTitle = "" })

	assert.Equal(t, "From Arg", resolveTitle([]string{"From Arg"}))
	assert.Equal(t, "From Flag", resolveTitle(nil))
}
