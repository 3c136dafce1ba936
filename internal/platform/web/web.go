// Package web holds the server-rendered HTML pages.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.tmpl
var files embed.FS

// Page template names.
const (
	PageIndex    = "index.tmpl"
	PagePostView = "post_view.tmpl"
	PagePostForm = "post_form.tmpl"
	PageLogin    = "login_form.tmpl"
	PageSignup   = "signup_form.tmpl"
	PageNotFound = "not_found.tmpl"
	PageError    = "error.tmpl"
)

// FuncMap is available to every template.
var FuncMap = template.FuncMap{
	"date": formatDate,
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Templates parses the embedded pages. The result is passed to
// gin.Engine.SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap).ParseFS(files, "templates/*.tmpl")
}
