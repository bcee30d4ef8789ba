package render

import (
	"embed"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/sozercan/poetry-assistant/apimodels"
)

//go:embed templates
var templateFS embed.FS

var (
	pageTmpl = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/page.html.tmpl"))
	textTmpl = texttemplate.Must(texttemplate.New("report.txt.tmpl").Funcs(texttemplate.FuncMap{
		"bar":  bar,
		"add1": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/report.txt.tmpl"))
)

// Page is everything the analyzer page shows. Poem is always echoed back so
// a failed submission can be retried without retyping.
type Page struct {
	Forms        []apimodels.Form
	SelectedForm string
	Poem         string
	Alert        *Alert
	Report       *Report
}

func (p Page) CanSubmit() bool {
	return strings.TrimSpace(p.Poem) != ""
}

func WriteHTML(w io.Writer, p Page) error {
	return pageTmpl.Execute(w, p)
}

func WriteText(w io.Writer, r Report) error {
	return textTmpl.Execute(w, r)
}

func bar(percent int) string {
	filled := percent / 10
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + "]"
}
