package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestExtractLinksFromReader(t *testing.T) {
	page := `<html><body>
		<a href="/tree/a/">subdir</a>
		<a href="/render/nb.html">notebook</a>
		<img src="logo.png" alt="logo">
		<script src="/livereload.js"></script>
		<a href="mailto:docs@example.com">mail</a>
	</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, links, 5)
	assert.Equal(t, Link{URL: "/tree/a/", Text: "subdir", Tag: "a", Attribute: "href"}, links[0])
	assert.Equal(t, "logo", links[2].Text)
	assert.Equal(t, "script", links[3].Tag)
}

func TestIsSiteLocal(t *testing.T) {
	for link, want := range map[string]bool{
		"/tree/a/":                true,
		"render/nb.html":          true,
		"https://example.com/x":   false,
		"mailto:docs@example.com": false,
		"#top":                    false,
		"":                        false,
	} {
		assert.Equal(t, want, IsSiteLocal(link), "link %q", link)
	}
}

func TestCheckCleanSite(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"tree/index.html":   `<a href="/tree/a/">a</a> <a href="/render/nb.html">nb</a> <a href="https://example.com">out</a>`,
		"tree/a/index.html": `<a href="/tree/">up</a> <script src="/livereload.js"></script>`,
		"render/nb.html":    `<a href="#cell-1">cell</a>`,
	})

	problems, err := NewChecker(dir, "/").Check()
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCheckReportsBrokenLinks(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"tree/index.html": `<a href="/render/missing.html">gone</a> <a href="/tree/nope/">nope</a>`,
	})

	problems, err := NewChecker(dir, "/").Check()
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, "tree/index.html", problems[0].Page)
	targets := []string{problems[0].Target, problems[1].Target}
	assert.Contains(t, targets, "render/missing.html")
	assert.Contains(t, targets, "tree/nope/index.html")
}

func TestCheckHonorsBaseURL(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"tree/index.html":   `<a href="/site/tree/a/">a</a> <a href="/elsewhere/x.html">stray</a>`,
		"tree/a/index.html": `ok`,
	})

	problems, err := NewChecker(dir, "/site").Check()
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "/elsewhere/x.html", problems[0].URL)
}

func TestCheckResolvesEscapedPaths(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"tree/index.html":        `<a href="/tree/my%20dir/">my dir</a>`,
		"tree/my dir/index.html": `empty`,
	})

	problems, err := NewChecker(dir, "/").Check()
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCheckResolvesRelativeLinks(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"tree/a/index.html": `<a href="../index.html">up</a> <a href="missing.html">broken</a>`,
		"tree/index.html":   `root`,
	})

	problems, err := NewChecker(dir, "/").Check()
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "tree/a/missing.html", problems[0].Target)
}
