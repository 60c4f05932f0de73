package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AttachmentService keeps the metadata rows and the on-disk blobs in
// step: a blob without a row is removed, a row is never left pointing at
// a blob that was not written.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	files       *storage.FileStore
	maxSize     int64
	logger      *zap.Logger
}

// NewAttachmentService creates the service.
func NewAttachmentService(attachments repository.AttachmentRepository, tickets repository.TicketRepository, files *storage.FileStore, maxSize int64, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{
		attachments: attachments,
		tickets:     tickets,
		files:       files,
		maxSize:     maxSize,
		logger:      logger,
	}
}

// Upload stores one attachment for a ticket.
func (s *AttachmentService) Upload(ctx context.Context, ticketPublicID, fileName, uploadedBy string, data []byte) (*domain.Attachment, error) {
	if fileName == "" {
		return nil, apperrors.NewValidationError("file name required", nil)
	}
	extension := storage.Extension(fileName)
	if !storage.Allowed(extension) {
		return nil, apperrors.NewValidationError("file type not allowed", map[string]any{"extension": extension})
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperrors.NewValidationError("file too large", map[string]any{
			"max_bytes": s.maxSize,
		})
	}

	ticket, err := s.tickets.GetByPublicID(ctx, ticketPublicID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketPublicID})
		}
		return nil, apperrors.MapError(err)
	}

	storageKey, err := s.files.Save(ticket.PublicID, extension, data)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if uploadedBy == "" {
		uploadedBy = "Sistema"
	}
	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		FileName:   fileName,
		Extension:  extension,
		SizeBytes:  int64(len(data)),
		StorageKey: storageKey,
		UploadedBy: uploadedBy,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		// The blob must not outlive a failed metadata insert.
		if removeErr := s.files.Remove(storageKey); removeErr != nil {
			s.logger.Warn("orphaned attachment blob", zap.String("storage_key", storageKey), zap.Error(removeErr))
		}
		return nil, apperrors.NewPersistenceError("attachment upload", err)
	}
	return attachment, nil
}

// ListForTicket returns a ticket's attachment metadata, newest first.
func (s *AttachmentService) ListForTicket(ctx context.Context, ticketPublicID string) ([]domain.Attachment, error) {
	ticket, err := s.tickets.GetByPublicID(ctx, ticketPublicID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketPublicID})
		}
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

// Resolve returns the metadata and the on-disk path for serving a file.
func (s *AttachmentService) Resolve(ctx context.Context, id int64) (*domain.Attachment, string, error) {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewNotFound("file", map[string]any{"file_id": id})
		}
		return nil, "", apperrors.MapError(err)
	}
	if !s.files.Exists(attachment.StorageKey) {
		s.logger.Error("attachment blob missing", zap.String("storage_key", attachment.StorageKey))
		return nil, "", apperrors.NewNotFound("file", map[string]any{"file_id": id})
	}
	path, err := s.files.Path(attachment.StorageKey)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return attachment, path, nil
}

// Delete removes the metadata row first, then the blob.
func (s *AttachmentService) Delete(ctx context.Context, id int64) error {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("file", map[string]any{"file_id": id})
		}
		return apperrors.MapError(err)
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return apperrors.NewPersistenceError("attachment deletion", err)
	}
	if err := s.files.Remove(attachment.StorageKey); err != nil {
		s.logger.Warn("deleting attachment blob failed", zap.String("storage_key", attachment.StorageKey), zap.Error(err))
	}
	return nil
}
