package rendering

import (
	"strings"
	"text/template"

	"github.com/jonathan/novel-lexicon/internal/types"
)

const markdownTemplate = `# {{.Title}}

## Summary

{{if .Summary}}{{.Summary}}{{else}}_No summary available._{{end}}

## Reading difficulty

{{range .Difficulty}}- **{{.Aspect}}**: {{or .Summary "n/a"}}
{{end}}
## Example sentences

{{if .HighlightedText}}{{quote .HighlightedText}}{{else}}_No sentences available._{{end}}

## Vocabulary

{{if .Vocabulary}}| Word | Level | Part of speech | Meaning |
|---|---|---|---|
{{range .Vocabulary}}| {{cell .Word}} | {{cell (print .CEFLevel)}} | {{cell .PartOfSpeech}} | {{cell .MeaningEn}} |
{{end}}{{else}}_No vocabulary available._
{{end}}{{if .StageErrors}}
## Problems

{{range .StageErrors}}- {{.Stage}}: {{.Message}}
{{end}}{{end}}`

var markdownFuncs = template.FuncMap{
	"quote": func(s string) string {
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n")
	},
	"cell": func(s string) string {
		s = strings.ReplaceAll(s, "|", `\|`)
		return strings.Join(strings.Fields(s), " ")
	},
}

// RenderMarkdown renders a human-readable report of bundle.
func RenderMarkdown(bundle *types.AnalysisBundle) (string, error) {
	tmpl, err := template.New("report").Funcs(markdownFuncs).Parse(markdownTemplate)
	if err != nil {
		return "", &TemplateError{Message: "failed to parse report template", Cause: err}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, bundle); err != nil {
		return "", &TemplateError{Message: "failed to execute report template", Cause: err}
	}
	return sb.String(), nil
}
