// Package storage writes export artifacts to disk inside a sandboxed
// directory. Paths are always resolved relative to the sandbox root and may
// not escape it.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// ErrEscapesSandbox is returned for paths that are absolute or climb out of
// the sandbox root.
var ErrEscapesSandbox = errors.New("path escapes sandbox")

// Sandbox confines file operations to a base directory. Paths are checked
// lexically, then every operation goes through an os.Root so symlinks
// cannot lead outside either.
type Sandbox struct {
	baseDir string
}

// NewSandbox creates a Sandbox rooted at baseDir, creating it if needed.
func NewSandbox(baseDir string) (*Sandbox, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", baseDir, err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("creating sandbox %s: %w", abs, err)
	}
	return &Sandbox{baseDir: abs}, nil
}

// BaseDir returns the absolute sandbox root.
func (s *Sandbox) BaseDir() string {
	return s.baseDir
}

func local(rel string) (string, error) {
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrEscapesSandbox, rel)
	}
	return filepath.Clean(rel), nil
}

// ResolvePath returns the absolute path of rel inside the sandbox.
func (s *Sandbox) ResolvePath(rel string) (string, error) {
	clean, err := local(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, clean), nil
}

// with opens the sandbox root for the duration of fn.
func (s *Sandbox) with(rel string, fn func(root *os.Root, name string) error) error {
	name, err := local(rel)
	if err != nil {
		return err
	}
	root, err := os.OpenRoot(s.baseDir)
	if err != nil {
		return fmt.Errorf("opening sandbox: %w", err)
	}
	defer root.Close()
	return fn(root, name)
}

// Exists reports whether rel exists.
func (s *Sandbox) Exists(rel string) (bool, error) {
	found := false
	err := s.with(rel, func(root *os.Root, name string) error {
		_, err := root.Stat(name)
		switch {
		case err == nil:
			found = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("checking %s: %w", rel, err)
		}
		return nil
	})
	return found, err
}

// MkdirAll creates rel and any missing parents.
func (s *Sandbox) MkdirAll(rel string) error {
	return s.with(rel, func(root *os.Root, name string) error {
		return root.MkdirAll(name, dirPerm)
	})
}

// ReadFile returns the contents of rel.
func (s *Sandbox) ReadFile(rel string) ([]byte, error) {
	var data []byte
	err := s.with(rel, func(root *os.Root, name string) (err error) {
		data, err = root.ReadFile(name)
		return err
	})
	return data, err
}

// AtomicWrite writes data to a hidden temp file beside rel and renames it
// into place, so readers never observe a partial artifact.
func (s *Sandbox) AtomicWrite(rel string, data []byte) error {
	return s.with(rel, func(root *os.Root, name string) error {
		if dir := filepath.Dir(name); dir != "." {
			if err := root.MkdirAll(dir, dirPerm); err != nil {
				return fmt.Errorf("creating parent of %s: %w", rel, err)
			}
		}
		tmp := filepath.Join(filepath.Dir(name), "."+filepath.Base(name)+"."+randomHex(8)+".tmp")
		if err := root.WriteFile(tmp, data, filePerm); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
		if err := root.Rename(tmp, name); err != nil {
			_ = root.Remove(tmp)
			return fmt.Errorf("renaming into %s: %w", rel, err)
		}
		return nil
	})
}

// Remove deletes a file or empty directory.
func (s *Sandbox) Remove(rel string) error {
	return s.with(rel, func(root *os.Root, name string) error {
		return root.Remove(name)
	})
}

// List returns the entries of directory rel sorted by name.
func (s *Sandbox) List(rel string) ([]os.DirEntry, error) {
	var entries []os.DirEntry
	err := s.with(rel, func(root *os.Root, name string) error {
		dir, err := root.Open(name)
		if err != nil {
			return err
		}
		defer dir.Close()
		entries, err = dir.ReadDir(-1)
		return err
	})
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, err
}

// SubSandbox returns a Sandbox rooted at rel, creating the directory.
func (s *Sandbox) SubSandbox(rel string) (*Sandbox, error) {
	path, err := s.ResolvePath(rel)
	if err != nil {
		return nil, err
	}
	return NewSandbox(path)
}

func randomHex(n int) string {
	b := make([]byte, (n+1)/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
