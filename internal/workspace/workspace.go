package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpub/internal/logfields"
)

// Manager handles the build root that working directories live in (either temporary or persistent).
type Manager struct {
	baseDir    string
	root       string
	persistent bool // If true, use the configured build root and keep it on Cleanup
}

// NewManager creates a manager with an ephemeral hidden build root inside baseDir.
// Placing it inside the publication root keeps it on the same filesystem.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a manager for a configured build root that is kept across runs.
// An empty subdirName uses baseDir itself.
func NewPersistentManager(baseDir, subdirName string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{
		baseDir:    baseDir,
		root:       filepath.Join(baseDir, subdirName),
		persistent: true,
	}
}

// Create creates the build root.
// For ephemeral mode: creates a timestamped hidden directory
// For persistent mode: ensures the fixed directory exists
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.root, 0o750); err != nil {
			return fmt.Errorf("failed to create build root: %w", err)
		}
		slog.Debug("Using persistent build root", logfields.Path(m.root))
		return nil
	}

	timestamp := time.Now().Format("20060102-150405")
	root := filepath.Join(m.baseDir, fmt.Sprintf(".docpub-%s-%s", timestamp, uuid.NewString()[:8]))
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("failed to create build root: %w", err)
	}
	m.root = root
	slog.Debug("Created build root", logfields.Path(root))
	return nil
}

// Path returns the build root.
func (m *Manager) Path() string { return m.root }

// Persistent reports whether the build root outlives Cleanup.
func (m *Manager) Persistent() bool { return m.persistent }

// Cleanup removes an ephemeral build root; persistent roots are kept.
func (m *Manager) Cleanup() error {
	if m.root == "" {
		return nil
	}
	if m.persistent {
		slog.Debug("Keeping persistent build root", logfields.Path(m.root))
		return nil
	}
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("failed to clean up build root: %w", err)
	}
	slog.Debug("Removed build root", logfields.Path(m.root))
	m.root = ""
	return nil
}

// WorkingDir returns root/<group>/<name>, creating the group directory. The working
// directory itself is recreated empty.
func (m *Manager) WorkingDir(group, name string) (string, error) {
	if m.root == "" {
		return "", fmt.Errorf("build root not created")
	}
	groupDir := filepath.Join(m.root, group)
	if err := os.MkdirAll(groupDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create group directory: %w", err)
	}
	dir := filepath.Join(groupDir, name)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to reset working directory: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create working directory: %w", err)
	}
	return dir, nil
}

// Prune removes the group directory if it is empty. A group still holding other working
// directories is left alone.
func (m *Manager) Prune(group string) error {
	if m.root == "" {
		return nil
	}
	dir := filepath.Join(m.root, group)
	err := os.Remove(dir)
	switch {
	case err == nil:
		slog.Debug("Pruned empty group directory", logfields.Path(dir))
		return nil
	case errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EEXIST), errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("failed to prune %s: %w", dir, err)
	}
}
