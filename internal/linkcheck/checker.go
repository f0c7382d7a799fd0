// Package linkcheck verifies that cross-links inside a generated site resolve
// to files in the output directory.
package linkcheck

import (
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	nberrors "nbexport/internal/errors"
	"nbexport/internal/logfields"
)

// Problem describes a link that does not resolve to a generated file.
type Problem struct {
	Page   string // page containing the link, relative to the output root
	URL    string // link target as written
	Target string // resolved output-relative path that was expected to exist
	Reason string
}

// Checker validates internal links across a generated output directory.
type Checker struct {
	outputDir string
	baseURL   string
}

// NewChecker creates a checker for the generated site at outputDir, whose
// pages were generated with the given base URL prefix.
func NewChecker(outputDir, baseURL string) *Checker {
	if baseURL == "" {
		baseURL = "/"
	}
	return &Checker{outputDir: outputDir, baseURL: baseURL}
}

// Check walks every generated HTML page and verifies its site-local links.
// It returns one Problem per broken link; a non-nil error means the output
// directory itself could not be walked.
func (c *Checker) Check() ([]Problem, error) {
	var problems []Problem
	err := filepath.WalkDir(c.outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nberrors.Wrap(err, nberrors.CategoryFileSystem, nberrors.SeverityError, "failed to walk output directory").WithPath(p)
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(c.outputDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		links, err := ExtractLinks(p)
		if err != nil {
			problems = append(problems, Problem{Page: rel, Reason: err.Error()})
			return nil
		}
		for _, link := range links {
			if prob, ok := c.checkLink(rel, link); !ok {
				problems = append(problems, prob)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("Link check complete", logfields.Path(c.outputDir), logfields.Count(len(problems)))
	return problems, nil
}

// checkLink resolves one link against the output directory.
func (c *Checker) checkLink(page string, link Link) (Problem, bool) {
	if !IsSiteLocal(link.URL) {
		return Problem{}, true
	}

	u, err := url.Parse(link.URL)
	if err != nil {
		return Problem{Page: page, URL: link.URL, Reason: "unparseable URL"}, false
	}
	target, err := url.PathUnescape(u.Path)
	if err != nil {
		return Problem{Page: page, URL: link.URL, Reason: "unescapable path"}, false
	}
	if target == "" {
		// Pure query/fragment links refer to the page itself.
		return Problem{}, true
	}
	// The reload script is served by the preview server, not written to disk.
	if strings.HasSuffix(target, "/livereload.js") || target == "livereload.js" {
		return Problem{}, true
	}

	if strings.HasPrefix(target, "/") {
		base := strings.TrimSuffix(c.baseURL, "/")
		if base != "" && !strings.HasPrefix(target, base+"/") && target != base {
			return Problem{Page: page, URL: link.URL, Target: target, Reason: "absolute link outside the site base URL"}, false
		}
		target = strings.TrimPrefix(target, base)
	} else {
		target = path.Join("/", path.Dir(page), target)
	}

	target = strings.TrimPrefix(path.Clean(target), "/")
	if target == "" || strings.HasSuffix(link.URL, "/") {
		target = path.Join(target, "index.html")
	}

	full := filepath.Join(c.outputDir, filepath.FromSlash(target))
	info, statErr := os.Stat(full)
	switch {
	case statErr != nil:
		return Problem{Page: page, URL: link.URL, Target: target, Reason: "target does not exist"}, false
	case info.IsDir():
		if _, err := os.Stat(filepath.Join(full, "index.html")); err != nil {
			return Problem{Page: page, URL: link.URL, Target: path.Join(target, "index.html"), Reason: "directory has no index"}, false
		}
	}
	return Problem{}, true
}
