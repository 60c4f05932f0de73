// Package storage keeps attachment blobs on the local filesystem,
// organized one directory per ticket under the configured upload root.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions mirrors the upload allow-list of the admin frontend.
var allowedExtensions = map[string]bool{
	"txt": true, "pdf": true, "png": true, "jpg": true, "jpeg": true,
	"gif": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"zip": true, "rar": true,
}

// mimeTypes covers the formats the browser can render inline; everything
// else is served as a download.
var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"txt":  "text/plain",
}

// FileStore writes and removes attachment blobs.
type FileStore struct {
	root string
}

// NewFileStore roots a store at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Extension returns the lowercase extension without the dot, or "" when
// the name has none.
func Extension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToLower(ext)
}

// Allowed reports whether the extension is on the upload allow-list.
func Allowed(extension string) bool {
	return allowedExtensions[extension]
}

// MimeType resolves the content type for inline viewing.
func MimeType(extension string) string {
	if mime, ok := mimeTypes[extension]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Save writes data under a fresh uuid name inside the ticket's directory
// and returns the storage key (path relative to the root).
func (s *FileStore) Save(ticketPublicID, extension string, data []byte) (string, error) {
	dir := filepath.Join(s.root, ticketPublicID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString()
	if extension != "" {
		name += "." + extension
	}
	key := filepath.Join(ticketPublicID, name)
	if err := os.WriteFile(filepath.Join(s.root, key), data, 0o644); err != nil {
		return "", err
	}
	return key, nil
}

// Path resolves a storage key to an absolute path, refusing keys that
// escape the root.
func (s *FileStore) Path(storageKey string) (string, error) {
	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", storageKey)
	}
	return filepath.Join(s.root, clean), nil
}

// Exists reports whether the blob is still on disk.
func (s *FileStore) Exists(storageKey string) bool {
	path, err := s.Path(storageKey)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Remove deletes the blob; missing files are not an error.
func (s *FileStore) Remove(storageKey string) error {
	path, err := s.Path(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
