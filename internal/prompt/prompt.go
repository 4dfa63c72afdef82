package prompt

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/huimingz/commitflow/internal/diff"
	"github.com/huimingz/commitflow/internal/log"
	"github.com/huimingz/commitflow/pkg/conventional"
)

// MaxFiles is the number of changed paths listed in a prompt.
const MaxFiles = 15

// Data is the input to Build.
type Data struct {
	Scope    string   // resolved scope label, may be empty
	Diff     string   // staged diff; truncated by Build
	Files    []string // changed paths; only the first MaxFiles are listed
	Language string   // output language display name, may be empty
	Context  string   // user supplied context, may be empty

	// DiffLimit overrides diff.MaxPromptDiffLength when positive.
	DiffLimit int
}

// commitTemplate is rendered with templateData.
const commitTemplate = `Generate a conventional commit message for the staged changes below.

Strict format:
{{if .Scope}}<type>({{.Scope}}): <subject>{{else}}<type>: <subject>{{end}}

{{if .Scope}}Scope: use "{{.Scope}}" exactly as given.{{else}}Scope: none. Do not add a scope or parentheses.{{end}}
{{if .Files}}
File changes:
{{range .Files}}- {{.}}
{{end}}{{end}}
Important:
  - Output ONLY the raw commit message on a single line
  - No additional text before or after
  - Never wrap the message in backticks or quotes
  - Never use markdown or code formatting

Rules:
  1. type: {{.Types}}
  2. subject:
     - imperative mood: "add" not "added", "fix" not "fixed"
     - lowercase, no trailing period
     - max 50 chars
{{- if .Language}}
     - written in {{.Language}}
{{- end}}

Examples of VALID messages:
{{range .Examples}}  {{.}}
{{end}}
Examples of INVALID messages:
  ` + "```" + `feat: add login` + "```" + `
  **fix**: resolve issue
  [chore] update config
{{if .Context}}
Additional context from the developer:
"{{.Context}}"
{{end}}
Current changes (truncated):
` + "```" + `
{{.Diff}}
` + "```" + `
`

var tmpl = template.Must(template.New("commit_prompt").Parse(commitTemplate))

type templateData struct {
	Scope    string
	Types    string
	Files    []string
	Examples []string
	Language string
	Context  string
	Diff     string
}

var (
	scopedExamples = []string{
		"fix(user): change avatar types",
		"feat(billing): add invoice export",
		"refactor(soft-skills): simplify survey controller",
	}
	plainExamples = []string{
		"fix: change avatar types",
		"feat: add invoice export",
		"chore: bump eslint to v9",
	}
)

// Build renders the instruction sent to the completion provider. The diff is
// cut to DiffLimit characters (diff.MaxPromptDiffLength by default) even when
// that splits a line.
func Build(d Data) string {
	limit := d.DiffLimit
	if limit <= 0 {
		limit = diff.MaxPromptDiffLength
	}

	files := d.Files
	if len(files) > MaxFiles {
		files = files[:MaxFiles]
	}

	examples := plainExamples
	if d.Scope != "" {
		examples = scopedExamples
	}

	data := templateData{
		Scope:    d.Scope,
		Types:    strings.Join(conventional.Types, "|"),
		Files:    files,
		Examples: examples,
		Language: d.Language,
		Context:  strings.TrimSpace(d.Context),
		Diff:     diff.Truncate(d.Diff, limit),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Debug("Prompt template failed, using plain prompt: %v", err)
		return plainPrompt(data)
	}
	return buf.String()
}

// plainPrompt is the minimal instruction used if the template cannot render.
func plainPrompt(d templateData) string {
	format := conventional.Format("<type>", d.Scope, "<subject>")
	return "Generate a single-line conventional commit message.\n" +
		"Strict format: " + format + "\n" +
		"type: " + d.Types + "\n" +
		"subject: imperative mood, lowercase, no trailing period, max 50 chars, no markdown.\n\n" +
		"```\n" + d.Diff + "\n```\n"
}
