package content

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nbexport/internal/errors"
)

// writeTree creates the given files (path -> content) under a fresh temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestClassifyNotebookRewritesOutputPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"sub/nb.ipynb": "{}",
	})

	node := Classify(filepath.Join(root, "sub", "nb.ipynb"), root)
	require.NotNil(t, node)
	assert.True(t, node.IsNotebook())
	assert.Equal(t, "nb.html", node.Name)
	assert.Equal(t, "sub/nb.html", node.Path)
	assert.Equal(t, "sub/nb.ipynb", node.SourcePath())
}

func TestClassifyIgnoresOtherFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"readme.txt": "hello",
		"data.csv":   "a,b",
	})

	assert.Nil(t, Classify(filepath.Join(root, "readme.txt"), root))
	assert.Nil(t, Classify(filepath.Join(root, "data.csv"), root))

	// The containing directory still yields a node with an empty listing.
	dir := Classify(root, root)
	require.NotNil(t, dir)
	assert.True(t, dir.IsDirectory())
	assert.Empty(t, dir.Children)
}

func TestClassifyExtensionIsCaseSensitive(t *testing.T) {
	root := writeTree(t, map[string]string{
		"NB.IPYNB": "{}",
		"Nb.IpYnB": "{}",
		"ok.ipynb": "{}",
	})

	assert.Nil(t, Classify(filepath.Join(root, "NB.IPYNB"), root))
	assert.Nil(t, Classify(filepath.Join(root, "Nb.IpYnB"), root))

	dir := Classify(root, root)
	require.NotNil(t, dir)
	require.Len(t, dir.Children, 1)
	assert.Equal(t, "ok.html", dir.Children[0].Name)
	// Every classified notebook's inverted source path must exist.
	assert.FileExists(t, filepath.Join(root, filepath.FromSlash(dir.Children[0].SourcePath())))
}

func TestClassifyMissingEntry(t *testing.T) {
	root := t.TempDir()
	assert.Nil(t, Classify(filepath.Join(root, "gone"), root))
}

func TestClassifySortsChildrenByName(t *testing.T) {
	root := writeTree(t, map[string]string{
		"zeta.ipynb":     "{}",
		"alpha.ipynb":    "{}",
		"mid/keep.ipynb": "{}",
	})

	dir := Classify(root, root)
	require.NotNil(t, dir)
	names := make([]string, 0, len(dir.Children))
	for _, c := range dir.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"alpha.html", "mid", "zeta.html"}, names)
}

func TestClassifyEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	dir := Classify(root, root)
	require.NotNil(t, dir)
	require.Len(t, dir.Children, 1)
	child := dir.Children[0]
	assert.True(t, child.IsDirectory())
	assert.Equal(t, "empty", child.Name)
	assert.Equal(t, "empty", child.Path)
	assert.Empty(t, child.Children)
}

func TestClassifyDeterministic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/one.ipynb":     "{}",
		"a/two.ipynb":     "{}",
		"b/c/three.ipynb": "{}",
		"notes.md":        "ignored",
	})

	first := Classify(root, root)
	second := Classify(root, root)
	require.NotNil(t, first)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestClassifyDirIsShallow(t *testing.T) {
	root := writeTree(t, map[string]string{
		"top.ipynb":        "{}",
		"sub/inner.ipynb":  "{}",
		"sub/deep/x.ipynb": "{}",
	})

	dir := ClassifyDir(root, root)
	require.NotNil(t, dir)
	require.Len(t, dir.Children, 2)

	sub := dir.Children[0]
	assert.Equal(t, "sub", sub.Name)
	assert.Equal(t, "sub", sub.Path)
	assert.Empty(t, sub.Children, "shallow classification must not descend")

	assert.Equal(t, "top.html", dir.Children[1].Name)
}

func TestClassifyDirUnlistable(t *testing.T) {
	assert.Nil(t, ClassifyDir(filepath.Join(t.TempDir(), "missing"), t.TempDir()))
}

func TestBuildTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"nb.ipynb": "{}",
	})

	tree, err := BuildTree(root)
	require.NoError(t, err)
	assert.True(t, tree.IsDirectory())
	assert.Equal(t, "", tree.Path)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "nb.html", tree.Children[0].Name)
}

func TestBuildTreeInvalidRoot(t *testing.T) {
	_, err := BuildTree(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInvalidRoot))

	file := filepath.Join(t.TempDir(), "file.ipynb")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	_, err = BuildTree(file)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInvalidRoot))
}
