// Package artifact stores image payloads as content-addressed files on
// disk. Files are named by the entry fingerprint with a .png extension,
// so the mapping from entry to artifact is recoverable without the
// database.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNotFound reports a missing artifact for a hash.
var ErrNotFound = errors.New("artifact not found")

// validHash matches a lowercase hex-encoded SHA256 hash (64 characters).
var validHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

const (
	ext         = ".png"
	thumbSuffix = "_thumb"
)

// Store is a flat directory of fingerprint-named image files.
type Store struct {
	dir string
}

// New creates an artifact store rooted at the given directory.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the filesystem path an artifact with this hash lives at.
func (s *Store) Path(hash string) string {
	return filepath.Join(s.dir, hash+ext)
}

// ThumbPath returns the path of the artifact's thumbnail.
func (s *Store) ThumbPath(hash string) string {
	return filepath.Join(s.dir, hash+thumbSuffix+ext)
}

// Put stores data under its hash and returns the resulting path.
// Idempotent — if the artifact exists, this is a no-op.
func (s *Store) Put(hash string, data []byte) (string, error) {
	if !validHash.MatchString(hash) {
		return "", fmt.Errorf("invalid artifact hash: %q", hash)
	}
	path := s.Path(hash)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// Write to temp file, then rename into place.
	tmp, err := os.CreateTemp(s.dir, ".artifact-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return path, nil
}

// Read returns the stored bytes for a hash. Returns ErrNotFound when no
// artifact exists.
func (s *Store) Read(hash string) ([]byte, error) {
	if !validHash.MatchString(hash) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(s.Path(hash))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", hash, err)
	}
	return data, nil
}

// Delete removes an artifact and its thumbnail. Missing files are not an
// error, so deletes are safe to retry.
func (s *Store) Delete(hash string) error {
	if !validHash.MatchString(hash) {
		return nil
	}
	if err := os.Remove(s.Path(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact %s: %w", hash, err)
	}
	if err := os.Remove(s.ThumbPath(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete thumbnail %s: %w", hash, err)
	}
	return nil
}

// List returns the hashes of all stored artifacts, skipping thumbnails
// and temp files.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	var hashes []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) || strings.Contains(name, thumbSuffix) {
			continue
		}
		hash := strings.TrimSuffix(name, ext)
		if validHash.MatchString(hash) {
			hashes = append(hashes, hash)
		}
	}
	return hashes, nil
}
