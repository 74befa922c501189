package analysis

import (
	_ "embed"
	"strings"
	"text/template"
)

const systemPrompt = "You are an expert Solidity gas optimization assistant."

//go:embed prompt.tmpl
var promptText string

var promptTmpl = template.Must(template.New("prompt").Parse(promptText))

// SystemPrompt returns the system instruction sent with every request.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt renders the analysis prompt for one source file. name is
// the display name of the artifact and may be empty. source is embedded
// verbatim.
func BuildPrompt(source, name string) string {
	var b strings.Builder
	data := struct{ Source, Name string }{Source: source, Name: name}
	if err := promptTmpl.Execute(&b, data); err != nil {
		// The template is fixed and only references string fields.
		panic("analysis: rendering prompt: " + err.Error())
	}
	return b.String()
}
