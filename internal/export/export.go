// Package export walks a notebook source tree and lazily emits the pages of
// the resulting static site: one directory index per directory under tree/,
// one rendered notebook page per notebook under render/.
//
// Traversal is single-threaded, depth-first and pre-order: a directory's
// index is emitted before any of its children, a directory child is exported
// completely before the next sibling, and siblings are visited in sorted-name
// order. The sequence is pull-based; the caller may stop consuming at any
// point and nothing beyond the last pulled artifact is computed.
package export

import (
	"context"
	"iter"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"nbexport/internal/content"
	apperrors "nbexport/internal/errors"
	"nbexport/internal/logfields"
	"nbexport/internal/metrics"
	"nbexport/internal/nav"
	"nbexport/internal/render"
)

// Output path segments under the output root.
const (
	TreeDir   = "tree"
	RenderDir = "render"
	IndexFile = "index.html"
)

// Artifact is one emitted output unit: a slash-separated path relative to the
// output root, and the page bytes to place there.
type Artifact struct {
	Path    string
	Content []byte
}

// RenderErrorPolicy controls what happens when a single notebook fails to render.
type RenderErrorPolicy string

const (
	// PolicyHalt surfaces the first render failure and stops the export.
	PolicyHalt RenderErrorPolicy = "halt"
	// PolicySkip logs the failure and emits a placeholder error page in the
	// notebook's place so the rest of the site is still produced.
	PolicySkip RenderErrorPolicy = "skip"
)

// Options configures an Exporter. PageConfig is opaque template-level
// configuration owned by the caller.
type Options struct {
	BaseURL       string
	Theme         string
	PageConfig    map[string]any
	LiveReload    bool
	OnRenderError RenderErrorPolicy
}

// PageContext is the ephemeral render input assembled per index page.
type PageContext struct {
	Contents    *content.Node
	PageTitle   string
	Breadcrumbs []nav.Crumb
	BaseURL     string
	Theme       string
	PageConfig  map[string]any
	LiveReload  bool

	// LiveReloadSrc is the URL of the live-reload client script, set when
	// LiveReload is enabled.
	LiveReloadSrc string
}

// Exporter drives the tree export. It owns no state beyond its configuration;
// every directory is reclassified from the filesystem at the moment it is
// reached, so each index reflects the filesystem as of its own visit.
type Exporter struct {
	renderer render.Renderer
	opts     Options
	tmpl     *indexTemplate
	rec      metrics.Recorder
}

// New creates an Exporter around the given notebook renderer.
func New(renderer render.Renderer, opts Options) (*Exporter, error) {
	if opts.OnRenderError == "" {
		opts.OnRenderError = PolicyHalt
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "/"
	}
	tmpl, err := newIndexTemplate(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		renderer: renderer,
		opts:     opts,
		tmpl:     tmpl,
		rec:      metrics.NoopRecorder{},
	}, nil
}

// WithRecorder injects a metrics recorder (fluent helper).
func (e *Exporter) WithRecorder(rec metrics.Recorder) *Exporter {
	if rec != nil {
		e.rec = rec
	}
	return e
}

// Export returns the lazy artifact sequence for the tree rooted at root.
// The sequence is finite and non-restartable. An invalid root fails before
// any artifact is produced; artifacts already yielded before a later failure
// are never retracted.
func (e *Exporter) Export(ctx context.Context, root string) iter.Seq2[Artifact, error] {
	return func(yield func(Artifact, error) bool) {
		if err := content.ValidateRoot(root); err != nil {
			yield(Artifact{}, err)
			return
		}
		e.exportDir(ctx, root, root, yield)
	}
}

// exportDir emits the index page for dir and every artifact below it.
// Returns false once the consumer stopped pulling or a fatal error ended the
// traversal.
func (e *Exporter) exportDir(ctx context.Context, dir, root string, yield func(Artifact, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield(Artifact{}, err)
		return false
	}

	node := content.ClassifyDir(dir, root)
	if node == nil {
		// The directory vanished or became unreadable after its parent listed
		// it; the parent index is already out, so just skip the subtree.
		slog.Warn("Directory no longer classifiable, skipping subtree", logfields.Path(dir))
		return true
	}
	rel := node.Path

	page, err := e.tmpl.render(PageContext{
		Contents:      node,
		PageTitle:     nav.PageTitle(rel),
		Breadcrumbs:   nav.Breadcrumbs(rel, e.opts.BaseURL),
		BaseURL:       e.opts.BaseURL,
		Theme:         e.opts.Theme,
		PageConfig:    e.opts.PageConfig,
		LiveReload:    e.opts.LiveReload,
		LiveReloadSrc: nav.JoinURL(e.opts.BaseURL, "livereload.js"),
	})
	if err != nil {
		if !yield(Artifact{}, apperrors.TemplateFailure(dir, err)) {
			return false
		}
		// Fatal for this subtree either way; siblings only continue under skip.
		return e.opts.OnRenderError == PolicySkip
	}
	if !yield(Artifact{Path: path.Join(TreeDir, rel, IndexFile), Content: page}, nil) {
		return false
	}
	e.rec.IncArtifact(metrics.KindIndex)

	for _, child := range node.Children {
		switch {
		case child.IsNotebook():
			if !e.exportNotebook(ctx, child, root, yield) {
				return false
			}
		case child.IsDirectory():
			if !e.exportDir(ctx, filepath.Join(dir, child.Name), root, yield) {
				return false
			}
		}
	}
	return true
}

// exportNotebook renders one notebook child and emits its page.
func (e *Exporter) exportNotebook(ctx context.Context, child *content.Node, root string, yield func(Artifact, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield(Artifact{}, err)
		return false
	}

	srcRel := child.SourcePath()
	srcPath := filepath.Join(root, filepath.FromSlash(srcRel))

	start := time.Now()
	html, err := e.renderer.Render(ctx, srcPath, render.Config{
		BaseURL:    e.opts.BaseURL,
		Theme:      e.opts.Theme,
		PageConfig: e.opts.PageConfig,
		LiveReload: e.opts.LiveReload,
	})
	e.rec.ObserveRenderDuration(time.Since(start), err == nil)

	kind := metrics.KindNotebook
	if err != nil {
		failure := apperrors.RenderFailure(srcRel, err)
		if e.opts.OnRenderError == PolicyHalt {
			yield(Artifact{}, failure)
			return false
		}
		slog.Warn("Notebook render failed, emitting placeholder page",
			logfields.Notebook(srcRel), logfields.Error(err))
		html = e.tmpl.errorPage(child.Name, failure)
		kind = metrics.KindPlaceholder
	}

	if !yield(Artifact{Path: path.Join(RenderDir, child.Path), Content: html}, nil) {
		return false
	}
	e.rec.IncArtifact(kind)
	return true
}
