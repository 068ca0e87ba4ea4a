package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpub/internal/document"
	"git.home.luguber.info/inful/docpub/internal/retry"
	"git.home.luguber.info/inful/docpub/internal/workspace"
)

func newPublisher(t *testing.T) (*Publisher, string) {
	t.Helper()
	root := t.TempDir()
	pub := filepath.Join(root, "pub")
	require.NoError(t, os.Mkdir(pub, 0o755))
	ws := workspace.NewPersistentManager(filepath.Join(root, "build"), "")
	require.NoError(t, ws.Create())
	p := New(pub, ws, WithRetry(retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 1)))
	require.NoError(t, p.Check())
	return p, pub
}

// build writes a complete artifact set tagged with version into a fresh working directory.
func build(t *testing.T, p *Publisher, stem, version string) string {
	t.Helper()
	dir, err := p.Prepare("Linuxdoc", stem)
	require.NoError(t, err)
	arts := document.ArtifactsFor(dir, stem)
	for _, kind := range document.ArtifactKinds {
		require.NoError(t, os.WriteFile(arts.ByKind(kind), []byte(version), 0o644))
	}
	return dir
}

// assertVersion checks the published directory is complete and holds only version.
func assertVersion(t *testing.T, pub, stem, version string) {
	t.Helper()
	out := document.NewOutput(filepath.Join(pub, stem))
	require.True(t, out.IsComplete(), "missing %v", out.Missing())
	for _, kind := range document.ArtifactKinds {
		data, err := os.ReadFile(out.Artifacts().ByKind(kind))
		require.NoError(t, err)
		assert.Equal(t, version, string(data), kind)
	}
}

func hidden(t *testing.T, pub string) []string {
	t.Helper()
	entries, err := os.ReadDir(pub)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.Name()[0] == '.' {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestPublish_New(t *testing.T) {
	p, pub := newPublisher(t)
	working := build(t, p, "Foo", "v1")

	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))
	assertVersion(t, pub, "Foo", "v1")
	assert.NoDirExists(t, working)
	assert.NoDirExists(t, filepath.Dir(working), "empty group directory is pruned")
}

func TestPublish_Replace(t *testing.T) {
	p, pub := newPublisher(t)
	build(t, p, "Foo", "v1")
	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))

	build(t, p, "Foo", "v2")
	build(t, p, "Bar", "v1")
	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))
	assertVersion(t, pub, "Foo", "v2")
	assert.Empty(t, hidden(t, pub), "replaced directory is removed")
	assert.DirExists(t, filepath.Join(p.ws.Path(), "Linuxdoc"), "group with other documents is kept")
}

func TestPublish_NothingBuilt(t *testing.T) {
	p, _ := newPublisher(t)
	err := p.Publish(context.Background(), "Linuxdoc", "Ghost")
	require.ErrorIs(t, err, ErrNoWorkingDir)
}

func TestPublish_SecondRenameFailsRestoresOld(t *testing.T) {
	p, pub := newPublisher(t)
	build(t, p, "Foo", "v1")
	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))
	working := build(t, p, "Foo", "v2")

	calls := 0
	rename = func(from, to string) error {
		calls++
		if calls == 2 {
			return &os.LinkError{Op: "rename", Old: from, New: to, Err: errors.New("injected")}
		}
		return os.Rename(from, to)
	}
	t.Cleanup(func() { rename = os.Rename })

	err := p.Publish(context.Background(), "Linuxdoc", "Foo")
	require.ErrorIs(t, err, ErrPublishRace)
	assertVersion(t, pub, "Foo", "v1")
	assert.DirExists(t, working, "working directory stays for a retry")
	assert.Empty(t, hidden(t, pub))

	rename = os.Rename
	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))
	assertVersion(t, pub, "Foo", "v2")
}

func TestRecover_CrashBetweenRenames(t *testing.T) {
	p, pub := newPublisher(t)
	build(t, p, "Foo", "v1")
	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))
	build(t, p, "Foo", "v2")

	// State after the first rename of a swap and nothing else.
	backup := filepath.Join(pub, ".Foo"+backupMarker+"crash")
	require.NoError(t, os.Rename(filepath.Join(pub, "Foo"), backup))

	require.NoError(t, p.RecoverAll(context.Background()))
	assertVersion(t, pub, "Foo", "v1")
	assert.Empty(t, hidden(t, pub))
}

func TestRecover_RestoresNewestBackup(t *testing.T) {
	p, pub := newPublisher(t)
	now := time.Now()
	// The lexically first name holds the older build.
	for _, b := range []struct {
		name, version string
		age           time.Duration
	}{
		{"aaaa", "v1", 2 * time.Hour},
		{"zzzz", "v2", time.Hour},
	} {
		backup := filepath.Join(pub, ".Foo"+backupMarker+b.name)
		require.NoError(t, os.Rename(build(t, p, "Foo", b.version), backup))
		mtime := now.Add(-b.age)
		require.NoError(t, os.Chtimes(backup, mtime, mtime))
	}

	require.NoError(t, p.Recover(context.Background(), "Foo"))
	assertVersion(t, pub, "Foo", "v2")
	assert.Empty(t, hidden(t, pub))
}

func TestRecover_CrashAfterSecondRename(t *testing.T) {
	p, pub := newPublisher(t)
	build(t, p, "Foo", "v1")
	require.NoError(t, p.Publish(context.Background(), "Linuxdoc", "Foo"))

	// State after both renames, before the backup was removed.
	backup := filepath.Join(pub, ".Foo"+backupMarker+"crash")
	require.NoError(t, os.Rename(filepath.Join(pub, "Foo"), backup))
	working := build(t, p, "Foo", "v2")
	require.NoError(t, os.Rename(working, filepath.Join(pub, "Foo")))

	require.NoError(t, p.Recover(context.Background(), "Foo"))
	assertVersion(t, pub, "Foo", "v2")
	assert.Empty(t, hidden(t, pub))
}

func TestDiscard(t *testing.T) {
	p, _ := newPublisher(t)
	working := build(t, p, "Foo", "v1")
	require.NoError(t, p.Discard("Linuxdoc", "Foo"))
	assert.NoDirExists(t, working)
	assert.NoDirExists(t, filepath.Dir(working))
}

func TestBackupStem(t *testing.T) {
	stem, ok := backupStem(".Foo-HOWTO.old-1234")
	assert.True(t, ok)
	assert.Equal(t, "Foo-HOWTO", stem)

	for _, name := range []string{"Foo", ".hidden", ".old-1234"} {
		_, ok := backupStem(name)
		assert.False(t, ok, name)
	}
}

func TestCheckSameDevice(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckSameDevice(dir, dir))
	require.Error(t, CheckSameDevice(dir, filepath.Join(dir, "missing")))
}
