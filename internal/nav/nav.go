// Package nav derives breadcrumb trails and page titles for tree index pages.
package nav

import (
	"net/url"
	"path"
	"strings"
)

// TreeSegment is the URL path segment under which directory indexes live.
const TreeSegment = "tree"

// HomeTitle is the title of the export root's index page.
const HomeTitle = "Home"

// Crumb is one breadcrumb entry. The first entry of a trail is always the
// site root with an empty label.
type Crumb struct {
	Link  string
	Label string
}

// Breadcrumbs builds the navigational trail for a directory at relPath
// (slash-separated, relative to the export root; empty for the root). Each
// entry's link joins all segments up to and including that one; only the
// joined segment portion is URL-escaped, never the base URL.
func Breadcrumbs(relPath, baseURL string) []Crumb {
	base := normalizeBase(baseURL)
	crumbs := []Crumb{{Link: JoinURL(base, TreeSegment), Label: ""}}

	for i, part := range segments(relPath) {
		link := JoinURL(base, TreeSegment, EscapePath(path.Join(segments(relPath)[:i+1]...)))
		crumbs = append(crumbs, Crumb{Link: link, Label: part})
	}
	return crumbs
}

// PageTitle derives a human title for a directory at relPath. Deeply nested
// paths are truncated to the last two segments to bound title length; a
// non-empty title carries a trailing separator. The export root gets a fixed
// sentinel. Display heuristic only, never used for linking.
func PageTitle(relPath string) string {
	parts := segments(relPath)
	if len(parts) > 3 {
		parts = parts[len(parts)-2:]
	}
	title := strings.Join(parts, "/")
	if title == "" {
		return HomeTitle
	}
	return title + "/"
}

// JoinURL joins URL path pieces with single slashes, preserving a leading
// slash on the first piece and dropping empty pieces.
func JoinURL(pieces ...string) string {
	leading := len(pieces) > 0 && strings.HasPrefix(pieces[0], "/")
	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.Trim(p, "/")
		if p != "" {
			parts = append(parts, p)
		}
	}
	joined := strings.Join(parts, "/")
	if leading {
		return "/" + joined
	}
	return joined
}

// EscapePath URL-escapes each segment of a slash-separated path, keeping the
// separators themselves intact.
func EscapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// normalizeBase treats an unset base URL as the site root.
func normalizeBase(baseURL string) string {
	if baseURL == "" {
		return "/"
	}
	return baseURL
}

// segments splits a slash-separated relative path into its non-empty parts.
func segments(relPath string) []string {
	if relPath == "" || relPath == "." {
		return nil
	}
	raw := strings.Split(relPath, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
