package web

import (
	"embed"
	"html/template"
)

//go:embed panel.html
var files embed.FS

// PanelTemplate parses the server-rendered social panel page.
func PanelTemplate() (*template.Template, error) {
	return template.ParseFS(files, "panel.html")
}
