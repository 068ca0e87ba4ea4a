// Package vcs looks up the version-control revision of source documents so it can be
// recorded alongside their published artifacts.
package vcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository indicates a path outside any git work tree.
var ErrNotRepository = errors.New("not in a git repository")

// Revision describes the repository state a document was built from.
type Revision struct {
	// Head is the commit HEAD points at.
	Head string
	// Branch is the checked out branch, empty when HEAD is detached.
	Branch string
	// LastChange is the most recent commit touching the document, empty if it was never committed.
	LastChange string
}

// Comments renders the revision as manifest comment lines.
func (r Revision) Comments() []string {
	out := []string{"source-revision: " + r.Head}
	if r.Branch != "" {
		out = append(out, "source-branch: "+r.Branch)
	}
	if r.LastChange != "" {
		out = append(out, "source-last-change: "+r.LastChange)
	}
	return out
}

// Resolver opens each repository once and answers lookups for paths inside it.
type Resolver struct {
	mu    sync.Mutex
	repos map[string]*git.Repository // by work tree root
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{repos: make(map[string]*git.Repository)}
}

// Lookup returns the revision for path, which may be a file or directory inside a work tree.
func (r *Resolver) Lookup(path string) (Revision, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Revision{}, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	repo, root, err := r.open(abs)
	if err != nil {
		return Revision{}, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Revision{}, fmt.Errorf("%w: no commits in %s", ErrNotRepository, root)
		}
		return Revision{}, fmt.Errorf("read HEAD: %w", err)
	}
	rev := Revision{Head: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	rel, err := filepath.Rel(root, abs)
	if err == nil && rel != "." {
		rev.LastChange = lastChange(repo, head.Hash(), filepath.ToSlash(rel))
	}
	return rev, nil
}

func (r *Resolver) open(abs string) (*git.Repository, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dir := abs
	if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
		dir = filepath.Dir(abs)
	}
	if repo, root, ok := r.cached(abs, dir); ok {
		return repo, root, nil
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}
		return nil, "", fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", ErrNotRepository, abs, err)
	}
	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	r.repos[root] = repo
	return repo, root, nil
}

// cached returns the innermost opened repository containing abs. A .git entry between
// that root and dir marks a nested repository or submodule that has not been opened yet.
func (r *Resolver) cached(abs, dir string) (*git.Repository, string, bool) {
	best := ""
	for root := range r.repos {
		if (abs == root || strings.HasPrefix(abs, root+string(filepath.Separator))) && len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return nil, "", false
	}
	for d := dir; len(d) > len(best); d = filepath.Dir(d) {
		if _, err := os.Lstat(filepath.Join(d, ".git")); err == nil {
			return nil, "", false
		}
	}
	return r.repos[best], best, true
}

// lastChange returns the newest commit reachable from head that touches rel.
func lastChange(repo *git.Repository, head plumbing.Hash, rel string) string {
	prefix := rel + "/"
	iter, err := repo.Log(&git.LogOptions{
		From: head,
		PathFilter: func(p string) bool {
			return p == rel || strings.HasPrefix(p, prefix)
		},
	})
	if err != nil {
		return ""
	}
	defer iter.Close()
	c, err := iter.Next()
	if err != nil {
		return ""
	}
	return commitHash(c)
}

func commitHash(c *object.Commit) string {
	if c == nil {
		return ""
	}
	return c.Hash.String()
}
