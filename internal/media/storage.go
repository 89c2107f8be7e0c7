// Package media provides validated storage and serving support for uploaded
// bookmark media files.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Storage manages uploaded media files on the filesystem.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	maxBytes int64
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at basePath, creating the directory if
// needed. maxBytes caps a single upload.
func NewStorage(basePath string, maxBytes int64) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if maxBytes < 1 {
		return nil, fmt.Errorf("max upload size must be positive")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Storage{basePath: basePath, maxBytes: maxBytes}, nil
}

// MaxBytes returns the upload size cap.
func (s *Storage) MaxBytes() int64 { return s.maxBytes }

// Save validates an upload against the declared media class ("audio" or
// "video") and writes it to disk under a generated filename. Returns the bare
// filename (no directory component). The filename embeds the owner's user ID
// so ownership can be recovered from the name alone.
func (s *Storage) Save(ownerID, originalName, class string, r io.Reader) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("owner ID cannot be empty")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if !AllowedExtension(class, ext) {
		return "", ErrUnsupportedType
	}

	nonce, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	filename := newFilename(ownerID, nonce, ext)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	// Read one byte past the cap to detect oversize uploads.
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path) //nolint:errcheck // Best-effort cleanup
		return "", fmt.Errorf("write media file: %w", err)
	}
	if n > s.maxBytes {
		os.Remove(path) //nolint:errcheck // Best-effort cleanup
		return "", ErrUploadTooLarge
	}
	if n == 0 {
		os.Remove(path) //nolint:errcheck // Best-effort cleanup
		return "", fmt.Errorf("upload is empty")
	}

	// Sniff the stored bytes; extension alone is not trusted.
	if err := s.verifyContent(path, ext, class); err != nil {
		os.Remove(path) //nolint:errcheck // Best-effort cleanup
		return "", err
	}

	return filename, nil
}

// Open opens a stored media file by bare filename for serving. The caller is
// responsible for ownership checks via OwnerFromFilename.
func (s *Storage) Open(filename string) (*os.File, os.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, filepath.Base(filename))
	f, err := os.Open(path) //#nosec G304 -- Base() strips any path traversal
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck // Already failing
		return nil, nil, err
	}
	return f, info, nil
}

// Delete removes a stored media file. Missing files are not an error.
func (s *Storage) Delete(filename string) error {
	if filename == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

// newFilename builds "{ownerID}.{unixnano}-{nonce}.{ext}". Generated IDs
// never contain a dot, so the owner is recoverable as everything before the
// first one.
func newFilename(ownerID, nonce, ext string) string {
	return fmt.Sprintf("%s.%d-%s.%s", ownerID, time.Now().UnixNano(), nonce, ext)
}

// OwnerFromFilename extracts the owning user ID embedded in a stored media
// filename. Returns "" when the name has no owner prefix.
func OwnerFromFilename(filename string) string {
	base := filepath.Base(filename)
	idx := strings.IndexByte(base, '.')
	if idx <= 0 {
		return ""
	}
	return base[:idx]
}
