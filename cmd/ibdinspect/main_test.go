package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrefersExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t1.ibd")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	flagDataDir = "/nonexistent-datadir"
	defer func() { flagDataDir = "" }()

	require.Equal(t, path, resolvePath(path))
}

func TestResolvePathJoinsBareNameAgainstDataDir(t *testing.T) {
	dir := t.TempDir()
	flagDataDir = dir
	defer func() { flagDataDir = "" }()

	got := resolvePath("t1.ibd")
	require.Equal(t, filepath.Join(dir, "t1.ibd"), got)
}

func TestResolvePathNoDataDirReturnsInputUnchanged(t *testing.T) {
	flagDataDir = ""
	require.Equal(t, "bare.ibd", resolvePath("bare.ibd"))
}
