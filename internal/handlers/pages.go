package handlers

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// ListPageTemplate is the name of the list page template
const ListPageTemplate = "list.html"

// Templates parses the embedded HTML templates for gin's SetHTMLTemplate
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
