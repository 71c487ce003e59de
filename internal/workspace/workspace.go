package workspace

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Manager owns one workspace directory.
type Manager struct {
	baseDir    string
	dir        string
	persistent bool
}

// NewManager returns an ephemeral workspace manager rooted at baseDir
// (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager returns a manager for the fixed directory baseDir/name.
// Cleanup leaves it in place.
func NewPersistentManager(baseDir, name string) *Manager {
	if name == "" {
		name = "checkout"
	}
	return &Manager{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, name),
		persistent: true,
	}
}

// Create makes the workspace directory.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return errors.FileSystemError("failed to create persistent workspace").WithCause(err).
				WithContext("path", m.dir).
				Build()
		}
		slog.Debug("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return errors.FileSystemError("failed to create workspace base").WithCause(err).
			WithContext("path", m.baseDir).
			Build()
	}
	dir, err := os.MkdirTemp(m.baseDir, "mdsite-*")
	if err != nil {
		return errors.FileSystemError("failed to create workspace").WithCause(err).
			WithContext("path", m.baseDir).
			Build()
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, or "" before Create.
func (m *Manager) Path() string {
	return m.dir
}

// Persistent reports whether the workspace outlives Cleanup.
func (m *Manager) Persistent() bool {
	return m.persistent
}

// Cleanup removes an ephemeral workspace. It is a no-op for persistent ones.
func (m *Manager) Cleanup() error {
	if m.dir == "" || m.persistent {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return errors.FileSystemError("failed to clean up workspace").WithCause(err).
			WithContext("path", m.dir).
			Build()
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
