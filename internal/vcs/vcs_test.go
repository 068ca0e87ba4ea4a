package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(filepath.ToSlash(name))
	require.NoError(t, err)
	h, err := w.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h.String()
}

func TestResolver_Lookup(t *testing.T) {
	root := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	fooCommit := commitFile(t, repo, root, "Foo.sgml", "one")
	head := commitFile(t, repo, root, "Bar/Bar.xml", "two")

	r := NewResolver()
	rev, err := r.Lookup(filepath.Join(root, "Foo.sgml"))
	require.NoError(t, err)
	assert.Equal(t, head, rev.Head)
	assert.Equal(t, fooCommit, rev.LastChange)
	assert.NotEmpty(t, rev.Branch)

	rev, err = r.Lookup(filepath.Join(root, "Bar"))
	require.NoError(t, err)
	assert.Equal(t, head, rev.LastChange)
	assert.Len(t, r.repos, 1, "repository is opened once")

	comments := rev.Comments()
	assert.Equal(t, "source-revision: "+head, comments[0])
}

func TestResolver_NestedRepository(t *testing.T) {
	root := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	outer, err := git.PlainInit(root, false)
	require.NoError(t, err)
	outerHead := commitFile(t, outer, root, "Foo.sgml", "one")

	r := NewResolver()
	rev, err := r.Lookup(filepath.Join(root, "Foo.sgml"))
	require.NoError(t, err)
	assert.Equal(t, outerHead, rev.Head)

	nested := filepath.Join(root, "vendor", "Baz")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	inner, err := git.PlainInit(nested, false)
	require.NoError(t, err)
	innerHead := commitFile(t, inner, nested, "Baz.xml", "two")

	rev, err = r.Lookup(filepath.Join(nested, "Baz.xml"))
	require.NoError(t, err)
	assert.Equal(t, innerHead, rev.Head)
	assert.Len(t, r.repos, 2)

	rev, err = r.Lookup(filepath.Join(nested, "Baz.xml"))
	require.NoError(t, err)
	assert.Equal(t, innerHead, rev.Head, "innermost cached repository wins")
	rev, err = r.Lookup(filepath.Join(root, "Foo.sgml"))
	require.NoError(t, err)
	assert.Equal(t, outerHead, rev.Head)
}

func TestResolver_NotRepository(t *testing.T) {
	_, err := NewResolver().Lookup(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestResolver_NoCommits(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)
	_, err = NewResolver().Lookup(root)
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestRevisionComments(t *testing.T) {
	assert.Equal(t, []string{"source-revision: abc"}, Revision{Head: "abc"}.Comments())
	assert.Len(t, Revision{Head: "abc", Branch: "main", LastChange: "def"}.Comments(), 3)
}
