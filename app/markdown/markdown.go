// Package markdown renders post bodies to HTML.
package markdown

import (
	"html/template"

	"gitlab.com/golang-commonmark/markdown"
)

// Post content is written by the site's authors, so raw HTML passes through.
var md = markdown.New(
	markdown.HTML(true),
	markdown.Tables(true),
	markdown.Breaks(true),
	markdown.Linkify(true),
	markdown.Typographer(false),
)

// Render converts Markdown source to HTML.
func Render(src string) string {
	return md.RenderToString([]byte(src))
}

// HTML is Render typed for html/template so the output is not escaped again.
func HTML(src string) template.HTML {
	return template.HTML(Render(src))
}

// FuncMap exposes the renderer to templates as `markdown`.
func FuncMap() template.FuncMap {
	return template.FuncMap{"markdown": HTML}
}
