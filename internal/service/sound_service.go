package service

import (
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SoundService manages each administrator's custom notification clip:
// the short audio file the admin panel plays when a ticket lands. One
// clip per admin; uploading replaces, deleting restores the default.
type SoundService struct {
	sounds  *storage.SoundStore
	maxSize int64
	logger  *zap.Logger
}

// NewSoundService creates the service.
func NewSoundService(sounds *storage.SoundStore, maxSize int64, logger *zap.Logger) *SoundService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SoundService{sounds: sounds, maxSize: maxSize, logger: logger}
}

// Upload stores admin's clip, replacing any previous one. Returns the
// stored file name.
func (s *SoundService) Upload(admin, fileName string, data []byte) (string, error) {
	if admin == "" {
		return "", apperrors.NewValidationError("username required", nil)
	}
	if fileName == "" {
		return "", apperrors.NewValidationError("file name required", nil)
	}
	extension := storage.Extension(fileName)
	if !storage.AllowedAudio(extension) {
		return "", apperrors.NewValidationError("audio type not allowed, use MP3, WAV, OGG or M4A",
			map[string]any{"extension": extension})
	}
	if int64(len(data)) > s.maxSize {
		return "", apperrors.NewValidationError("sound file too large", map[string]any{
			"max_bytes": s.maxSize,
		})
	}
	name, err := s.sounds.Save(admin, extension, data)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	s.logger.Info("notification sound stored",
		zap.String("admin", admin), zap.String("file", name))
	return name, nil
}

// Remove deletes admin's clip and returns the removed file names.
func (s *SoundService) Remove(admin string) ([]string, error) {
	if admin == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	removed, err := s.sounds.RemoveAll(admin)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return removed, nil
}

// Lookup returns the file name of admin's clip, if any.
func (s *SoundService) Lookup(admin string) (string, bool, error) {
	if admin == "" {
		return "", false, apperrors.NewValidationError("username required", nil)
	}
	name, ok, err := s.sounds.Lookup(admin)
	if err != nil {
		return "", false, apperrors.NewInternalError(err)
	}
	return name, ok, nil
}

// Resolve maps a clip file name to its on-disk path for serving.
func (s *SoundService) Resolve(name string) (string, error) {
	path, err := s.sounds.Path(name)
	if err != nil {
		return "", apperrors.NewValidationError("invalid sound name", nil)
	}
	return path, nil
}
