package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nbexport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "source: ./nb\n"))
	require.NoError(t, err)

	assert.Equal(t, "./nb", cfg.Source)
	assert.Equal(t, "./site", cfg.Output.Directory)
	assert.Equal(t, "/", cfg.Site.BaseURL)
	assert.Equal(t, "light", cfg.Site.Theme)
	assert.Equal(t, "halt", cfg.Site.OnRenderError)
	assert.Equal(t, ":8000", cfg.Serve.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
	assert.Zero(t, cfg.RebuildEvery())
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("NBEXPORT_TEST_SRC", "/data/books")
	cfg, err := Load(writeConfig(t, "source: ${NBEXPORT_TEST_SRC}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data/books", cfg.Source)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRenderErrorPolicy(t *testing.T) {
	_, err := Load(writeConfig(t, "site:\n  on_render_error: explode\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on_render_error")

	cfg, err := Load(writeConfig(t, "site:\n  on_render_error: skip\n"))
	require.NoError(t, err)
	assert.Equal(t, "skip", cfg.Site.OnRenderError)
}

func TestValidateRepo(t *testing.T) {
	_, err := Load(writeConfig(t, "repo:\n  branch: dev\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo.url")

	cfg, err := Load(writeConfig(t, "repo:\n  url: https://example.com/r.git\n"))
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Repo.Branch)
}

func TestValidateWatchEvery(t *testing.T) {
	_, err := Load(writeConfig(t, "watch:\n  every: sometimes\n"))
	require.Error(t, err)

	cfg, err := Load(writeConfig(t, "watch:\n  every: 30m\n"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.RebuildEvery())
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nbexport.yaml")
	require.NoError(t, Init(path, false))

	// The generated example must load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./notebooks", cfg.Source)
	assert.True(t, cfg.Serve.LiveReload)

	// Refuses to overwrite unless forced.
	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))
}
