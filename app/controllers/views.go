package controllers

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"portfolio/app/markdown"
)

// Templates holds one parsed template set per page, each rooted at "layout".
type Templates map[string]*template.Template

var pages = map[string][]string{
	"home":  {"posts/home.html", "shared/post_card.html"},
	"index": {"posts/index.html", "shared/post_card.html", "shared/tags.html", "shared/pagination.html"},
	"show":  {"posts/show.html", "shared/comments.html", "shared/comment_form.html"},
	"saved": {"posts/saved.html", "shared/post_card.html"},
}

func funcs() template.FuncMap {
	fm := markdown.FuncMap()
	fm["date"] = func(t time.Time) string { return t.Format("January 2, 2006") }
	return fm
}

// LoadTemplates parses every page under viewsDir together with layout.html.
func LoadTemplates(viewsDir string) (Templates, error) {
	templates := make(Templates, len(pages))
	for name, files := range pages {
		paths := []string{filepath.Join(viewsDir, "layout.html")}
		for _, f := range files {
			paths = append(paths, filepath.Join(viewsDir, f))
		}
		t, err := template.New("layout").Funcs(funcs()).ParseFiles(paths...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s templates: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// render executes the page into a buffer first so a template failure still yields a clean 500.
func (t Templates) render(logger *slog.Logger, w http.ResponseWriter, r *http.Request, name string, status int, data interface{}) {
	tmpl, ok := t[name]
	if !ok {
		logger.Error("missing template", "name", name)
		sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("template error", "name", name, "error", err)
		sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
