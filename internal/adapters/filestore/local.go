package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidReference is returned for references that do not name a file
// inside the store's directory
var ErrInvalidReference = errors.New("invalid file reference")

// LocalStore keeps uploaded documents on the local filesystem. Filename
// uniqueness is the store's contract: every write gets a uuid suffix, so
// concurrent uploads never collide regardless of caller-supplied prefixes.
type LocalStore struct {
	baseDir string
}

// New creates a LocalStore rooted at baseDir, creating it if needed
func New(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// BaseDir returns the directory files are stored in
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// Write stores the content of r and returns the generated reference.
// prefix is advisory (it keeps filenames recognizable); ext must include
// the leading dot.
func (s *LocalStore) Write(ctx context.Context, prefix, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := fmt.Sprintf("%s_%s%s", sanitize(prefix), uuid.New().String(), strings.ToLower(ext))

	f, err := os.OpenFile(filepath.Join(s.baseDir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filepath.Join(s.baseDir, ref))
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(filepath.Join(s.baseDir, ref))
		return "", err
	}

	return ref, nil
}

// Delete removes a stored file by reference
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// ListOlderThan returns references of stored files last modified before
// cutoff, used by the orphaned-file sweeper
func (s *LocalStore) ListOlderThan(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			refs = append(refs, entry.Name())
		}
	}
	return refs, nil
}

// resolve validates a reference and returns its absolute path
func (s *LocalStore) resolve(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", ErrInvalidReference
	}
	return filepath.Join(s.baseDir, ref), nil
}

// sanitize strips anything path-like from a caller-supplied prefix
func sanitize(prefix string) string {
	if prefix == "" {
		return "document"
	}
	var b strings.Builder
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
