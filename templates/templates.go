// Package templates renders the panel's HTML pages.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"modpanel/models"
)

//go:embed html/*.html
var files embed.FS

const displayLayout = "02/01/2006 15:04"

// Page is the data every page receives. Data carries the page-specific part.
type Page struct {
	Title    string
	Channel  *models.Channel
	Channels []models.Channel
	LoggedIn bool
	UserName string
	Path     string
	Data     interface{}
}

var funcs = template.FuncMap{
	"fmtTime":    formatTime,
	"lower":      strings.ToLower,
	"pathEscape": url.PathEscape,
}

func formatTime(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.Local().Format(displayLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Local().Format(displayLayout)
	default:
		return ""
	}
}

var pages = mustParse()

func mustParse() map[string]*template.Template {
	names, err := fs.Glob(files, "html/*.html")
	if err != nil {
		panic(err)
	}

	out := make(map[string]*template.Template)
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "html/layout.html", name))
		out[strings.TrimSuffix(base, ".html")] = t
	}
	return out
}

// Render executes the named page inside the shared layout. Output is
// buffered so a failing template never leaves a half-written response.
func Render(w io.Writer, name string, page Page) error {
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
