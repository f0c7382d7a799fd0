package workspace

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndCleanup(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Create())

	path := m.Path()
	assert.True(t, strings.Contains(path, "nbexport-"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, m.Cleanup())
	assert.NoDirExists(t, path)
	assert.Empty(t, m.Path())

	// Cleanup is idempotent.
	assert.NoError(t, m.Cleanup())
}
