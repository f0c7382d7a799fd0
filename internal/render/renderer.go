// Package render turns one notebook file into one standalone HTML page.
package render

import "context"

// Config carries the template-level configuration handed to a renderer for
// each page. It is assembled by the caller per export run; the renderer does
// not own or mutate it.
type Config struct {
	BaseURL    string
	Theme      string
	Title      string
	PageConfig map[string]any
	LiveReload bool
}

// Renderer abstracts the notebook-to-HTML engine so alternate backends can be
// substituted without touching traversal logic.
//
// Contract:
//
//	Render(ctx, notebookPath, cfg) -> html bytes for exactly that notebook.
//
// Each call is a self-contained, file-scoped operation: any handle opened for
// the notebook is released on every exit path, including failure.
type Renderer interface {
	Render(ctx context.Context, notebookPath string, cfg Config) ([]byte, error)
}

// NoopRenderer produces an empty page without reading the notebook; useful in
// tests or when only the tree structure is wanted.
type NoopRenderer struct{}

func (NoopRenderer) Render(_ context.Context, _ string, _ Config) ([]byte, error) {
	return []byte{}, nil
}
