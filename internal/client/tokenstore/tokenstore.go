// Package tokenstore provides the single slot the portal client persists its
// bearer token in.
package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Memory keeps the token for the life of the process.
type Memory struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns a Memory slot that already holds token.
func NewMemoryWith(token string) *Memory {
	return &Memory{token: token, set: true}
}

func (m *Memory) Load() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.set, nil
}

func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = token, true
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = "", false
	return nil
}

// File keeps the token in a single file readable only by its owner. Writes
// replace the file atomically; the last writer wins.
type File struct {
	path string
}

const fileMode = 0o600

func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath is the token file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "campus", "token"), nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Load() (string, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	return token, token != "", nil
}

func (f *File) Save(token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting token file mode: %w", err)
	}
	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}

func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
