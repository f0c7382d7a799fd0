package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	apperrors "nbexport/internal/errors"
	"nbexport/internal/nav"
)

//go:embed templates/tree.html.tmpl templates/error.html.tmpl
var indexTemplates embed.FS

// indexTemplate renders directory index pages and placeholder error pages.
// The template name is fixed; there is exactly one tree index layout.
type indexTemplate struct {
	tree    *template.Template
	errPage *template.Template
}

func newIndexTemplate(baseURL string) (*indexTemplate, error) {
	funcs := template.FuncMap{
		// treeURL links to a subdirectory's index; renderURL to a rendered
		// notebook. Only the relative-path portion is escaped, never the base.
		"treeURL": func(relPath string) string {
			return nav.JoinURL(baseURL, nav.TreeSegment, nav.EscapePath(relPath)) + "/"
		},
		"renderURL": func(relPath string) string {
			return nav.JoinURL(baseURL, RenderDir, nav.EscapePath(relPath))
		},
	}

	tree, err := template.New("tree.html.tmpl").Funcs(funcs).ParseFS(indexTemplates, "templates/tree.html.tmpl")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryTemplate, apperrors.SeverityFatal, "parse tree index template")
	}
	errPage, err := template.ParseFS(indexTemplates, "templates/error.html.tmpl")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryTemplate, apperrors.SeverityFatal, "parse error page template")
	}
	return &indexTemplate{tree: tree, errPage: errPage}, nil
}

// render produces one directory index page.
func (t *indexTemplate) render(pc PageContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tree.Execute(&buf, pc); err != nil {
		return nil, fmt.Errorf("execute tree index template: %w", err)
	}
	return buf.Bytes(), nil
}

// errorPage produces the placeholder emitted for a notebook whose render
// failed under the skip policy. Failures here are impossible in practice
// (fixed template, plain strings); fall back to a minimal page if they occur.
func (t *indexTemplate) errorPage(name string, cause error) []byte {
	var buf bytes.Buffer
	data := struct {
		Name  string
		Cause string
	}{Name: name, Cause: cause.Error()}
	if err := t.errPage.Execute(&buf, data); err != nil {
		return []byte("<!DOCTYPE html><title>render failed</title><p>render failed")
	}
	return buf.Bytes()
}
