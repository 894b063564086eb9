package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePathAndChecks(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a", "b", "config.yaml")

	assert.False(t, IsExist(file))
	require.NoError(t, CreatePath(file, 0o755))
	assert.True(t, IsDir(filepath.Dir(file)))
	assert.False(t, IsFile(filepath.Dir(file)))

	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.True(t, IsExist(file))
	assert.True(t, IsFile(file))
	assert.False(t, IsDir(file))
}

func TestEnsureDirSkipsEmpty(t *testing.T) {
	assert.NoError(t, EnsureDir("", 0o755))
	assert.NoError(t, EnsureDir(".", 0o755))
	assert.NoError(t, CreatePath("notes.db", 0o755))
}
