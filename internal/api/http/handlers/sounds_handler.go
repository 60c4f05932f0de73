package handlers

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SoundsHandler manages per-admin custom notification sounds.
type SoundsHandler struct {
	service *service.SoundService
}

// NewSoundsHandler constructs handler.
func NewSoundsHandler(soundService *service.SoundService) *SoundsHandler {
	return &SoundsHandler{service: soundService}
}

// Upload POST /api/upload-notification-sound (multipart form, field
// "sound" plus "username").
func (h *SoundsHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("sound")
	if err != nil {
		return apperrors.NewValidationError("sound field required", nil)
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

	name, err := h.service.Upload(c.FormValue("username"), header.Filename, data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Sonido personalizado guardado correctamente",
		"filePath": soundPath(name),
		"filename": name,
	})
}

// Delete POST /api/delete-notification-sound.
func (h *SoundsHandler) Delete(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	removed, err := h.service.Remove(req.Username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "sonido personalizado eliminado",
		"deletedFiles": removed,
	})
}

// Get GET /api/get-notification-sound?username=.
func (h *SoundsHandler) Get(c *fiber.Ctx) error {
	name, ok, err := h.service.Lookup(c.Query("username"))
	if err != nil {
		return err
	}
	response := fiber.Map{"success": true, "hasCustomSound": ok}
	if ok {
		response["soundPath"] = soundPath(name)
	} else {
		response["soundPath"] = nil
	}
	return c.JSON(response)
}

// Serve GET /static/notification_sounds/:filename.
func (h *SoundsHandler) Serve(c *fiber.Ctx) error {
	path, err := h.service.Resolve(c.Params("filename"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return apperrors.NewNotFound("sound", map[string]any{"filename": c.Params("filename")})
	}
	c.Set(fiber.HeaderContentType, storage.AudioMimeType(storage.Extension(path)))
	return c.SendFile(path)
}

func soundPath(name string) string {
	return "/static/notification_sounds/" + name
}
