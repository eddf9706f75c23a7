// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"
)

// parsePromptTmpl asks the oracle to structure one raw citation.
var parsePromptTmpl = template.Must(template.New("parse").Parse(`You are an expert academic librarian. Parse the raw academic citation below and return a structured JSON object.
The JSON object must contain these fields: "authors" (a list of strings), "year" (an integer), "title" (a string), and "source" (a string naming the journal, conference, or publisher).
If a field cannot be found, its value must be null.
Do not return any text other than the JSON object itself.
Citation to parse: "{{.Citation}}"
JSON output:
`))

// rescuePromptTmpl asks for the title alone after a parse left it empty.
var rescuePromptTmpl = template.Must(template.New("rescue").Parse(`Previous parsing failed. Your single task is to identify and extract the main title of the academic work in the text below.
Return only the raw title as a single line of plain text.
Raw text: "{{.Citation}}"
Title:
`))

// formatPromptTmpl asks for one advisory suggestion about the parsed fields.
var formatPromptTmpl = template.Must(template.New("format").Parse(`You are an expert academic journal editor. Analyze the parsed fields of a citation for issues.
Provide a single, concise suggestion for improvement if any issues are found. If the format is complete, return "None".
Do not add any prefixes. Focus on missing fields or abbreviated source names.
Parsed citation: {"authors": {{.Authors}}, "year": {{.Year}}, "title": {{.Title}}, "source": {{.Source}}}
Suggestion:
`))

// classifyPromptTmpl asks why a citation could not be verified.
var classifyPromptTmpl = template.Must(template.New("classify").Parse(`You are an expert academic librarian. A citation could not be found in online databases.
Analyze the citation and determine the most likely reason for the verification failure.
Choose from: {{range $i, $r := .Reasons}}{{if $i}}, {{end}}"{{$r}}"{{end}}.
Provide only the single most likely reason.
Citation: "{{.Citation}}"
Parsed title: "{{.Title}}"
Reason:
`))

// metadataPromptTmpl asks for the paper's own metadata from its first page.
var metadataPromptTmpl = template.Must(template.New("metadata").Parse(`You are a document analysis expert. Analyze the text from the first page of an academic paper and extract its metadata.
Return a JSON object with "title", "authors", "year", and "affiliation". If a field is not found, its value must be null.
Text to analyze: "{{.Text}}"
JSON output:
`))

// renderPrompt executes tmpl with data.
func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
