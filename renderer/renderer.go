// Package renderer turns valuations into markdown reports and PNG charts.
//
// Reports are assembled from embedded text/template files: an assembly
// template (e.g. report.md) includes partials sharing its prefix
// (report_title.md, report_holdings.md...).
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates, _ = fs.Sub(templateFS, "templates")

// RenderReport renders a valuation report to markdown.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title":    "report_title.md",
		"report_holdings": "report_holdings.md",
		"report_totals":   "report_totals.md",
		"report_watch":    "report_watch.md",
		"report_notes":    "report_notes.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// RenderGroups renders subtotals by dimension to markdown.
func RenderGroups(g *Groups) string {
	return renderTemplate("groups", "groups.md", nil, g)
}

// RenderHistory renders a profile history to markdown.
func RenderHistory(h *History) string {
	return renderTemplate("history", "history.md", nil, h)
}

var funcs = template.FuncMap{
	"add1": func(i int) int { return i + 1 },
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
