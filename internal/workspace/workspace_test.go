package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EphemeralMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(base)
	require.NoError(t, mgr.Create())

	root := mgr.Path()
	require.NotEmpty(t, root)
	assert.True(t, strings.HasPrefix(filepath.Base(root), ".docpub-"))
	assert.Equal(t, base, filepath.Dir(root))
	assert.DirExists(t, root)
	assert.False(t, mgr.Persistent())

	require.NoError(t, mgr.Cleanup())
	assert.NoDirExists(t, root)
	assert.Empty(t, mgr.Path())
	require.NoError(t, mgr.Cleanup(), "second cleanup is a no-op")
}

func TestManager_PersistentMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewPersistentManager(base, "")
	require.NoError(t, mgr.Create())
	assert.Equal(t, base, mgr.Path())
	require.NoError(t, mgr.Cleanup())
	assert.DirExists(t, base)

	sub := NewPersistentManager(base, "working")
	require.NoError(t, sub.Create())
	assert.Equal(t, filepath.Join(base, "working"), sub.Path())
	assert.True(t, sub.Persistent())
}

func TestManager_WorkingDir(t *testing.T) {
	mgr := NewPersistentManager(t.TempDir(), "")
	require.NoError(t, mgr.Create())

	dir, err := mgr.WorkingDir("Linuxdoc", "Foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mgr.Path(), "Linuxdoc", "Foo"), dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.html"), []byte("x"), 0o644))

	again, err := mgr.WorkingDir("Linuxdoc", "Foo")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	entries, err := os.ReadDir(again)
	require.NoError(t, err)
	assert.Empty(t, entries, "working directory is recreated empty")
}

func TestManager_WorkingDirBeforeCreate(t *testing.T) {
	_, err := NewManager(t.TempDir()).WorkingDir("Linuxdoc", "Foo")
	require.Error(t, err)
}

func TestManager_Prune(t *testing.T) {
	mgr := NewPersistentManager(t.TempDir(), "")
	require.NoError(t, mgr.Create())

	foo, err := mgr.WorkingDir("Linuxdoc", "Foo")
	require.NoError(t, err)
	_, err = mgr.WorkingDir("Linuxdoc", "Bar")
	require.NoError(t, err)

	require.NoError(t, os.Remove(foo))
	require.NoError(t, mgr.Prune("Linuxdoc"), "non-empty group is left alone")
	assert.DirExists(t, filepath.Join(mgr.Path(), "Linuxdoc"))

	require.NoError(t, os.Remove(filepath.Join(mgr.Path(), "Linuxdoc", "Bar")))
	require.NoError(t, mgr.Prune("Linuxdoc"))
	assert.NoDirExists(t, filepath.Join(mgr.Path(), "Linuxdoc"))

	require.NoError(t, mgr.Prune("Missing"))
}
