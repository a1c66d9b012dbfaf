// File: /services/media_store.go
package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MediaUsers = "user"
	MediaVans  = "vans"

	staticPrefix = "static"
)

var ErrOutsideMediaRoot = errors.New("media path outside of the static root")

// MediaStore keeps uploaded images under Root. Stored paths are public,
// e.g. "static/user/<uuid>/<hex>.png", and map onto Root by their suffix.
type MediaStore struct {
	Root      string
	protected map[string]bool
}

// NewMediaStore creates a store; protected paths (the shared defaults) are never deleted.
func NewMediaStore(root string, protected ...string) *MediaStore {
	m := &MediaStore{Root: root, protected: make(map[string]bool)}
	for _, p := range protected {
		m.protected[p] = true
	}
	return m
}

// Replace writes src as the new image of owner, hands its stored path to
// commit and, once commit succeeds, removes previous. When any step fails
// the new file is removed and previous is left alone.
func (m *MediaStore) Replace(kind, owner, ext string, src io.Reader, previous string, commit func(stored string) error) (string, error) {
	if owner == "" || strings.ContainsAny(owner, `/\.`) {
		return "", fmt.Errorf("invalid media owner %q", owner)
	}
	dir := filepath.Join(m.Root, kind, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media folder: %w", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
	temp := filepath.Join(dir, "temp_"+name)
	final := filepath.Join(dir, name)

	if err := writeFile(temp, src); err != nil {
		os.Remove(temp)
		return "", err
	}
	if err := os.Rename(temp, final); err != nil {
		os.Remove(temp)
		return "", fmt.Errorf("failed to move media file: %w", err)
	}

	stored := path.Join(staticPrefix, kind, owner, name)
	if err := commit(stored); err != nil {
		os.Remove(final)
		return "", err
	}

	if previous != "" && previous != stored && !m.protected[previous] {
		if err := m.Remove(previous); err != nil {
			return stored, fmt.Errorf("new media committed, old file kept: %w", err)
		}
	}
	return stored, nil
}

func writeFile(dst string, src io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush media file: %w", err)
	}
	return f.Close()
}

// Remove deletes a stored file; a missing file is not an error.
func (m *MediaStore) Remove(stored string) error {
	if m.protected[stored] {
		return nil
	}
	p, err := m.Resolve(stored)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// RemoveOwner deletes the whole media folder of owner.
func (m *MediaStore) RemoveOwner(kind, owner string) error {
	if owner == "" || strings.ContainsAny(owner, `/\.`) {
		return fmt.Errorf("invalid media owner %q", owner)
	}
	if err := os.RemoveAll(filepath.Join(m.Root, kind, owner)); err != nil {
		return fmt.Errorf("failed to remove media folder: %w", err)
	}
	return nil
}

// Resolve maps a stored path onto the filesystem.
func (m *MediaStore) Resolve(stored string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+stored), "/")
	if rel == staticPrefix {
		rel = ""
	}
	rel = strings.TrimPrefix(rel, staticPrefix+"/")
	if rel == "" {
		return "", ErrOutsideMediaRoot
	}
	full := filepath.Join(m.Root, filepath.FromSlash(rel))
	within, err := filepath.Rel(m.Root, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", ErrOutsideMediaRoot
	}
	return full, nil
}
