package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMoveRename(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "my-plugin-main")
	dst := filepath.Join(root, "my-plugin")
	writeFile(t, filepath.Join(src, "my-plugin.php"), "<?php", 0o644)

	require.NoError(t, Move(context.Background(), src, dst))
	assert.Equal(t, "<?php", readFile(t, filepath.Join(dst, "my-plugin.php")))
	assert.NoDirExists(t, src)
}

func TestMoveMergesIntoExistingDirectory(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(src, "a.txt"), "new a", 0o644)
	writeFile(t, filepath.Join(src, "sub", "b.sh"), "#!/bin/sh", 0o755)
	writeFile(t, filepath.Join(dst, "a.txt"), "old a", 0o644)
	writeFile(t, filepath.Join(dst, "keep.txt"), "keep", 0o644)

	require.NoError(t, Move(context.Background(), src, dst))

	assert.Equal(t, "new a", readFile(t, filepath.Join(dst, "a.txt")))
	assert.Equal(t, "keep", readFile(t, filepath.Join(dst, "keep.txt")))
	assert.Equal(t, "#!/bin/sh", readFile(t, filepath.Join(dst, "sub", "b.sh")))
	assert.NoDirExists(t, src)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dst, "sub", "b.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}

func TestMoveIntoOwnSubdirectory(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "pkg")
	dst := filepath.Join(src, "nested")
	writeFile(t, filepath.Join(src, "file.txt"), "x", 0o644)
	writeFile(t, filepath.Join(dst, "existing.txt"), "y", 0o644)

	require.NoError(t, Move(context.Background(), src, dst))

	assert.Equal(t, "x", readFile(t, filepath.Join(dst, "file.txt")))
	assert.Equal(t, "y", readFile(t, filepath.Join(dst, "existing.txt")))
	assert.DirExists(t, src, "source keeps the destination so it is not removed")
	assert.NoFileExists(t, filepath.Join(src, "file.txt"))
}

func TestMoveMissingSource(t *testing.T) {
	root := t.TempDir()
	err := Move(context.Background(), filepath.Join(root, "absent"), filepath.Join(root, "dst"))
	require.Error(t, err)
}

func TestCopyFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in")
	dst := filepath.Join(root, "out")
	writeFile(t, src, "payload", 0o600)

	require.NoError(t, copyFile(src, dst))
	assert.Equal(t, "payload", readFile(t, dst))
	assert.Error(t, copyFile(filepath.Join(root, "missing"), dst))
}
