// Package renderer formats consolidation results as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/holdings/version"
)

//go:embed templates/*.md
var templates embed.FS

// funcs are the formatting functions available to templates.
var funcs = template.FuncMap{
	"money":  Money,
	"signed": SignedMoney,
	"pct":    Percent,
}

// RenderComparison renders the changes between two versions.
func RenderComparison(c *version.Comparison) string {
	partials := map[string]string{
		"comparison_title":   "comparison_title.md",
		"comparison_assets":  "comparison_assets.md",
		"comparison_changes": "comparison_changes.md",
	}
	return renderTemplate("comparison", "comparison.md", partials, c)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
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
			content, readErr = fs.ReadFile(templates, "templates/"+file)
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
