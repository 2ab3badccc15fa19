package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/memberhub/registry-api/internal/config"

	"github.com/google/uuid"
)

// Store persists uploaded photos and generated code images under two content
// directories below a single root. Records reference files by a root-relative
// public path (e.g. "/uploads/photos/<name>") consumable by a static server.
type Store struct {
	root         string
	photoDir     string
	qrcodeDir    string
	publicPrefix string
}

// New creates a Store from configuration. Call Init before serving requests.
func New(cfg *config.Config) *Store {
	return &Store{
		root:         cfg.Storage.Root,
		photoDir:     cfg.Storage.PhotoDir,
		qrcodeDir:    cfg.Storage.QRCodeDir,
		publicPrefix: cfg.Storage.PublicPrefix,
	}
}

// Init creates the content directories if absent. Idempotent; run once at
// process startup, not per request.
func (s *Store) Init() error {
	for _, dir := range []string{s.PhotoPath(), s.QRCodePath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create content directory %s: %w", dir, err)
		}
	}
	return nil
}

// Root returns the storage root directory on disk.
func (s *Store) Root() string {
	return s.root
}

// PhotoPath returns the photo content directory on disk.
func (s *Store) PhotoPath() string {
	return filepath.Join(s.root, s.photoDir)
}

// QRCodePath returns the code-image content directory on disk.
func (s *Store) QRCodePath() string {
	return filepath.Join(s.root, s.qrcodeDir)
}

// SavePhoto stores an uploaded file under a random-suffixed name preserving
// the original extension and returns the public reference path.
func (s *Store) SavePhoto(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(s.PhotoPath(), name))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write photo file: %w", err)
	}

	return path.Join(s.publicPrefix, s.photoDir, name), nil
}

// QRCodeRef returns the public reference path for a code image file name.
func (s *Store) QRCodeRef(name string) string {
	return path.Join(s.publicPrefix, s.qrcodeDir, name)
}

// Resolve maps a public reference path back to a file on disk. It fails with
// os.ErrNotExist when the reference does not point into the store or the
// file is missing.
func (s *Store) Resolve(ref string) (string, error) {
	rel, ok := strings.CutPrefix(ref, s.publicPrefix+"/")
	if !ok {
		return "", os.ErrNotExist
	}

	// Reject traversal out of the storage root.
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", os.ErrNotExist
	}

	full := filepath.Join(s.root, cleaned)
	if _, err := os.Stat(full); err != nil {
		return "", err
	}
	return full, nil
}

// Remove deletes the file behind a public reference. A missing file is a
// no-op: removal is idempotent.
func (s *Store) Remove(ref string) error {
	full, err := s.Resolve(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}
