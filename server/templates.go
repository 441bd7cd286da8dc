package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/hubenschmidt/reelmatch/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexPage struct {
	Title string
	Query string
	Error string
}

type resultsPage struct {
	Title           string
	Query           string
	Recommendations []recommend.Recommendation
}

// render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
