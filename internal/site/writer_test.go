package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"nbexport/internal/export"
)

func TestWriteCreatesParents(t *testing.T) {
	out := t.TempDir()
	w := NewWriter(out)

	require.NoError(t, w.Write(export.Artifact{Path: "tree/a/b/index.html", Content: []byte("<html>")}))

	data, err := os.ReadFile(filepath.Join(out, "tree", "a", "b", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
	assert.Equal(t, 1, w.Written())
}

func TestWriteReplacesExistingDirectory(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "render", "nb.html")
	require.NoError(t, os.MkdirAll(filepath.Join(stale, "junk"), 0o755))

	w := NewWriter(out)
	require.NoError(t, w.Write(export.Artifact{Path: "render/nb.html", Content: []byte("page")}))

	info, err := os.Stat(stale)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestWriteRejectsEscapingPaths(t *testing.T) {
	w := NewWriter(t.TempDir())
	assert.Error(t, w.Write(export.Artifact{Path: "../outside.html"}))
	assert.Error(t, w.Write(export.Artifact{Path: "/abs.html"}))
}

func TestCleanRemovesOnlyOwnedOutput(t *testing.T) {
	out := t.TempDir()
	w := NewWriter(out)
	require.NoError(t, w.Write(export.Artifact{Path: "tree/index.html", Content: []byte("x")}))
	require.NoError(t, WriteManifest(out, Manifest{BaseURL: "/"}))

	foreign := filepath.Join(out, "CNAME")
	require.NoError(t, os.WriteFile(foreign, []byte("example.com"), 0o644))

	require.NoError(t, w.Clean())

	assert.NoFileExists(t, filepath.Join(out, "tree", "index.html"))
	assert.NoFileExists(t, filepath.Join(out, ManifestName))
	assert.FileExists(t, foreign)
}

func TestWriteManifest(t *testing.T) {
	out := t.TempDir()
	err := WriteManifest(out, Manifest{
		BaseURL:    "/",
		Theme:      "dark",
		Title:      "Team notebooks",
		PageConfig: map[string]any{"showSource": true},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, ManifestName))
	require.NoError(t, err)
	doc := gjson.ParseBytes(data)
	assert.Equal(t, "nbexport", doc.Get("generator").String())
	assert.Equal(t, "./tree", doc.Get("appUrl").String())
	assert.Equal(t, "dark", doc.Get("theme").String())
	assert.True(t, doc.Get("pageConfig.showSource").Bool())
}

func TestWriteManifestPreservesUnknownFields(t *testing.T) {
	out := t.TempDir()
	seeded := filepath.Join(out, ManifestName)
	require.NoError(t, os.WriteFile(seeded, []byte(`{"deploy":{"target":"cdn"}}`), 0o644))

	require.NoError(t, WriteManifest(out, Manifest{BaseURL: "/", Theme: "light"}))

	data, err := os.ReadFile(seeded)
	require.NoError(t, err)
	assert.Equal(t, "cdn", gjson.GetBytes(data, "deploy.target").String())
	assert.Equal(t, "light", gjson.GetBytes(data, "theme").String())
}
