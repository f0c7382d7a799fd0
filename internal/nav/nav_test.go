package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreadcrumbsNested(t *testing.T) {
	got := Breadcrumbs("a/b/c", "")
	want := []Crumb{
		{Link: "/tree", Label: ""},
		{Link: "/tree/a", Label: "a"},
		{Link: "/tree/a/b", Label: "b"},
		{Link: "/tree/a/b/c", Label: "c"},
	}
	assert.Equal(t, want, got)
}

func TestBreadcrumbsRoot(t *testing.T) {
	got := Breadcrumbs("", "")
	assert.Equal(t, []Crumb{{Link: "/tree", Label: ""}}, got)
}

func TestBreadcrumbsWithBaseURL(t *testing.T) {
	got := Breadcrumbs("docs", "/site")
	want := []Crumb{
		{Link: "/site/tree", Label: ""},
		{Link: "/site/tree/docs", Label: "docs"},
	}
	assert.Equal(t, want, got)
}

func TestBreadcrumbsEscapesSegmentsOnly(t *testing.T) {
	got := Breadcrumbs("my docs/sub dir", "/ba se")
	// The base URL is joined verbatim; only the segment portion is escaped.
	assert.Equal(t, "/ba se/tree/my%20docs/sub%20dir", got[2].Link)
	assert.Equal(t, "sub dir", got[2].Label)
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		relPath string
		want    string
	}{
		{"", "Home"},
		{".", "Home"},
		{"x", "x/"},
		{"x/y", "x/y/"},
		{"a/b/c", "a/b/c/"},
		{"a/b/c/d", "c/d/"},
		{"a/b/c/d/e", "d/e/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageTitle(tt.relPath), "relPath=%q", tt.relPath)
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "/tree/a", JoinURL("/", "tree", "a"))
	assert.Equal(t, "/base/tree", JoinURL("/base/", "/tree/"))
	assert.Equal(t, "tree/a", JoinURL("tree", "", "a"))
	assert.Equal(t, "/", JoinURL("/"))
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "a%20b/c%3Fd", EscapePath("a b/c?d"))
	assert.Equal(t, "plain", EscapePath("plain"))
}
