package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// FilesHandler serves ticket attachments.
type FilesHandler struct {
	service *service.AttachmentService
}

// NewFilesHandler constructs handler.
func NewFilesHandler(attachmentService *service.AttachmentService) *FilesHandler {
	return &FilesHandler{service: attachmentService}
}

// Upload POST /api/tickets/:id/upload (multipart form, field "file").
func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file field required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	attachment, err := h.service.Upload(c.UserContext(), c.Params("id"), header.Filename, c.FormValue("username"), data)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"file_id":   attachment.ID,
		"filename":  attachment.FileName,
		"file_size": domain.HumanSize(attachment.SizeBytes),
	})
}

// List GET /api/tickets/:id/files.
func (h *FilesHandler) List(c *fiber.Ctx) error {
	attachments, err := h.service.ListForTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, att := range attachments {
		items = append(items, dto.AttachmentResponse{
			ID:        att.ID,
			FileName:  att.FileName,
			Extension: att.Extension,
			SizeBytes: att.SizeBytes,
			SizeHuman: domain.HumanSize(att.SizeBytes),
			Uploader:  att.UploadedBy,
			CreatedAt: att.CreatedAt,
		})
	}
	return c.JSON(items)
}

// Download GET /api/files/:id/download.
func (h *FilesHandler) Download(c *fiber.Ctx) error {
	attachment, path, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.Download(path, attachment.FileName)
}

// View GET /api/files/:id/view, inline rendering for images and PDFs.
func (h *FilesHandler) View(c *fiber.Ctx) error {
	attachment, path, err := h.resolve(c)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, storage.MimeType(attachment.Extension))
	return c.SendFile(path)
}

// Delete DELETE /api/files/:id.
func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	id, err := fileID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "archivo eliminado correctamente"})
}

func (h *FilesHandler) resolve(c *fiber.Ctx) (*domain.Attachment, string, error) {
	id, err := fileID(c)
	if err != nil {
		return nil, "", err
	}
	return h.service.Resolve(c.UserContext(), id)
}

func fileID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid file id", nil)
	}
	return id, nil
}
