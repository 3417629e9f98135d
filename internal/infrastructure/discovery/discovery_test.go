package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(filepath.Join(root, p), 0o755))
	}
}

func TestDiscover_NonRecursiveReturnsRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "child-a", "child-b")

	dirs, ignored, err := Discover(root, Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{root}, dirs)
	assert.Empty(t, ignored)
}

func TestDiscover_RecursiveListsChildren(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "proj-a", "proj-b", "proj-c")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	dirs, ignored, err := Discover(root, Options{Recursive: true, MaxDepth: 1})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "proj-a"),
		filepath.Join(root, "proj-b"),
		filepath.Join(root, "proj-c"),
	}, dirs)
	assert.Empty(t, ignored)
}

func TestDiscover_SkipsGitDirectories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "proj-a/.git/objects", "proj-a/src")

	dirs, _, err := Discover(root, Options{Recursive: true, MaxDepth: 3})

	require.NoError(t, err)
	assert.Contains(t, dirs, filepath.Join(root, "proj-a"))
	assert.Contains(t, dirs, filepath.Join(root, "proj-a", "src"))
	for _, dir := range dirs {
		assert.NotContains(t, dir, ".git")
	}
}

func TestDiscover_IgnoredNamesAreReported(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "proj-a", "vendor", "proj-b")

	dirs, ignored, err := Discover(root, Options{
		Recursive:           true,
		MaxDepth:            1,
		IgnoredRepositories: []string{"vendor"},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "proj-a"),
		filepath.Join(root, "proj-b"),
	}, dirs)
	assert.Equal(t, []string{"vendor"}, ignored)
}

func TestDiscover_MaxDepthBoundsTheWalk(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/b/c")

	dirs, _, err := Discover(root, Options{Recursive: true, MaxDepth: 2})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
	}, dirs)
}

func TestDiscover_UnreadableSubdirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := t.TempDir()
	mkdirs(t, root, "proj-a", "locked/inner", "proj-b")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	dirs, _, err := Discover(root, Options{Recursive: true, MaxDepth: 2})

	require.NoError(t, err)
	assert.Contains(t, dirs, filepath.Join(root, "proj-a"))
	assert.Contains(t, dirs, filepath.Join(root, "proj-b"))
	assert.NotContains(t, dirs, filepath.Join(locked, "inner"))
}

func TestDiscover_MissingRootFails(t *testing.T) {
	_, _, err := Discover(filepath.Join(t.TempDir(), "missing"), Options{Recursive: true, MaxDepth: 1})

	require.Error(t, err)
}
