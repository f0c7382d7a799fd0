package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"nbexport/internal/nav"
	"nbexport/internal/notebook"
)

//go:embed templates/page.html.tmpl
var pageTemplates embed.FS

// PageRenderer renders notebooks in-process: markdown cells through goldmark,
// code cells and their recorded outputs as preformatted blocks, the whole
// page wrapped in an embedded shell template.
type PageRenderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// NewPageRenderer builds the default renderer.
func NewPageRenderer() (*PageRenderer, error) {
	tmpl, err := template.ParseFS(pageTemplates, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &PageRenderer{
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		tmpl: tmpl,
	}, nil
}

// pageData is the input to the page shell template.
type pageData struct {
	Title         string
	Theme         string
	BaseURL       string
	Language      string
	LiveReload    bool
	LiveReloadSrc string
	Cells         []template.HTML
}

func (r *PageRenderer) Render(ctx context.Context, notebookPath string, cfg Config) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nb, err := notebook.ReadFile(notebookPath)
	if err != nil {
		return nil, err
	}

	cells := make([]template.HTML, 0, len(nb.Cells))
	for _, cell := range nb.Cells {
		html, err := r.renderCell(cell, nb.Language)
		if err != nil {
			return nil, err
		}
		cells = append(cells, html)
	}

	title := cfg.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(notebookPath), filepath.Ext(notebookPath))
	}

	base := cfg.BaseURL
	if base == "" {
		base = "/"
	}

	var buf bytes.Buffer
	err = r.tmpl.Execute(&buf, pageData{
		Title:         title,
		Theme:         cfg.Theme,
		BaseURL:       base,
		Language:      nb.Language,
		LiveReload:    cfg.LiveReload,
		LiveReloadSrc: nav.JoinURL(base, "livereload.js"),
		Cells:         cells,
	})
	if err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PageRenderer) renderCell(cell notebook.Cell, language string) (template.HTML, error) {
	var b strings.Builder

	switch cell.Type {
	case notebook.CellMarkdown:
		b.WriteString(`<div class="cell cell-markdown">`)
		var md bytes.Buffer
		if err := r.md.Convert([]byte(cell.Source), &md); err != nil {
			return "", fmt.Errorf("convert markdown cell: %w", err)
		}
		b.Write(md.Bytes())
		b.WriteString(`</div>`)

	case notebook.CellCode:
		b.WriteString(`<div class="cell cell-code">`)
		fmt.Fprintf(&b, `<pre><code class="language-%s">%s</code></pre>`,
			template.HTMLEscapeString(language), template.HTMLEscapeString(cell.Source))
		for _, out := range cell.Outputs {
			b.WriteString(renderOutput(out))
		}
		b.WriteString(`</div>`)

	case notebook.CellRaw:
		b.WriteString(`<div class="cell cell-raw"><pre>`)
		b.WriteString(template.HTMLEscapeString(cell.Source))
		b.WriteString(`</pre></div>`)
	}

	return template.HTML(b.String()), nil
}

func renderOutput(out notebook.Output) string {
	var b strings.Builder
	switch out.Type {
	case notebook.OutputStream:
		b.WriteString(`<pre class="output output-stream">`)
		b.WriteString(template.HTMLEscapeString(out.Text))
		b.WriteString(`</pre>`)
	case notebook.OutputError:
		b.WriteString(`<pre class="output output-error">`)
		b.WriteString(template.HTMLEscapeString(out.Text))
		b.WriteString(`</pre>`)
	case notebook.OutputExecuteResult, notebook.OutputDisplayData:
		// Prefer the richest representation the notebook recorded.
		if html, ok := out.Data["text/html"]; ok {
			b.WriteString(`<div class="output output-html">`)
			b.WriteString(html)
			b.WriteString(`</div>`)
		} else if png, ok := out.Data["image/png"]; ok {
			b.WriteString(`<div class="output output-image"><img src="data:image/png;base64,`)
			b.WriteString(strings.TrimSpace(png))
			b.WriteString(`" alt="output"></div>`)
		} else if text, ok := out.Data["text/plain"]; ok {
			b.WriteString(`<pre class="output output-text">`)
			b.WriteString(template.HTMLEscapeString(text))
			b.WriteString(`</pre>`)
		}
	}
	return b.String()
}
