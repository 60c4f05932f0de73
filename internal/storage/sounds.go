package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedAudioExtensions is the clip allow-list for custom notification
// sounds.
var allowedAudioExtensions = map[string]bool{
	"mp3": true, "wav": true, "ogg": true, "m4a": true,
}

var audioMimeTypes = map[string]string{
	"mp3": "audio/mpeg",
	"wav": "audio/wav",
	"ogg": "audio/ogg",
	"m4a": "audio/mp4",
}

// AllowedAudio reports whether the extension is an accepted sound format.
func AllowedAudio(extension string) bool {
	return allowedAudioExtensions[extension]
}

// AudioMimeType resolves the content type for serving a sound clip.
func AudioMimeType(extension string) string {
	if mime, ok := audioMimeTypes[extension]; ok {
		return mime
	}
	return "application/octet-stream"
}

// SoundStore keeps each administrator's custom notification clip on disk,
// one file per admin, named "<admin>_<uuid>.<ext>" so a plain prefix scan
// finds the owner's clip.
type SoundStore struct {
	root string
}

// NewSoundStore roots a store at dir, creating it if needed.
func NewSoundStore(dir string) (*SoundStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sounds dir: %w", err)
	}
	return &SoundStore{root: dir}, nil
}

// Save writes admin's clip under a fresh name and returns the file name.
// Any previous clip for the same admin is removed first, so each admin
// holds at most one.
func (s *SoundStore) Save(admin, extension string, data []byte) (string, error) {
	if _, err := s.RemoveAll(admin); err != nil {
		return "", err
	}
	name := admin + "_" + uuid.NewString() + "." + extension
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Lookup returns the file name of admin's clip, if one exists.
func (s *SoundStore) Lookup(admin string) (string, bool, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return "", false, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), admin+"_") {
			return entry.Name(), true, nil
		}
	}
	return "", false, nil
}

// RemoveAll deletes every clip belonging to admin and returns the removed
// file names.
func (s *SoundStore) RemoveAll(admin string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), admin+"_") {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil {
			return removed, err
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// Path resolves a clip file name to an absolute path, refusing names that
// escape the sounds directory.
func (s *SoundStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid sound name %q", name)
	}
	return filepath.Join(s.root, name), nil
}
