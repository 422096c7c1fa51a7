package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MediaStore persists item photos and hands back the reference stored on the item.
type MediaStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	Delete(ctx context.Context, reference string) error
}

// LocalMediaStore keeps photos on the local filesystem. References are served
// statically under BaseURL.
type LocalMediaStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	allowed  map[string]bool
}

// NewLocalMediaStore creates the upload directory if it does not exist
func NewLocalMediaStore(cfg Config) (*LocalMediaStore, error) {
	if cfg.UploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalMediaStore{
		dir:      cfg.UploadDir,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: cfg.MaxFileSize,
		allowed:  allowed,
	}, nil
}

// Dir returns the directory files are written to
func (s *LocalMediaStore) Dir() string { return s.dir }

// BaseURL returns the prefix references are issued under
func (s *LocalMediaStore) BaseURL() string { return s.baseURL }

// Save sniffs the content type, writes the file under a fresh uuid name and
// returns its reference. Oversized or disallowed files are validation errors.
func (s *LocalMediaStore) Save(ctx context.Context, r io.Reader) (string, error) {
	logger.EnterMethod("LocalMediaStore.Save")

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		logger.ExitMethodWithError("LocalMediaStore.Save", err)
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", domain.NewValidationError("photo", "is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", domain.NewValidationError("photo", fmt.Sprintf("exceeds %d bytes", s.maxBytes))
	}

	mime := mimetype.Detect(data)
	contentType := strings.ToLower(strings.SplitN(mime.String(), ";", 2)[0])
	if len(s.allowed) > 0 && !s.allowed[contentType] {
		return "", domain.NewValidationError("photo", fmt.Sprintf("type %s is not allowed", contentType))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + mime.Extension()
	fullPath := filepath.Join(s.dir, name)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		logger.ExitMethodWithError("LocalMediaStore.Save", err)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	ref := path.Join(s.baseURL, name)
	logger.ExitMethod("LocalMediaStore.Save", "reference", ref, "content_type", contentType)
	return ref, nil
}

// Delete removes the file behind a reference issued by Save. Unknown references
// and already-deleted files are ignored.
func (s *LocalMediaStore) Delete(ctx context.Context, reference string) error {
	name, ok := strings.CutPrefix(reference, s.baseURL+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Open returns the stored file for a reference, used by tests and tooling
func (s *LocalMediaStore) Open(reference string) (io.ReadCloser, error) {
	name, ok := strings.CutPrefix(reference, s.baseURL+"/")
	if !ok || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: unknown reference %q", domain.ErrNotFound, reference)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, reference)
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
