package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/service"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

const uploadField = "upload"

// UploadsHandler stores and serves bucket objects.
type UploadsHandler struct {
	uploads *service.UploadService
}

func NewUploadsHandler(uploadService *service.UploadService) *UploadsHandler {
	return &UploadsHandler{uploads: uploadService}
}

// File handles POST /upload/public/file and /upload/public/3dfile.
func (h *UploadsHandler) File(c *fiber.Ctx) error {
	return h.upload(c, service.UploadEntityFile)
}

// Image handles POST /upload/public/image.
func (h *UploadsHandler) Image(c *fiber.Ctx) error {
	return h.upload(c, service.UploadEntityImage)
}

func (h *UploadsHandler) upload(c *fiber.Ctx, entity string) error {
	input, err := readUpload(c)
	if err != nil {
		return err
	}
	url, err := h.uploads.UploadPublic(c.UserContext(), entity, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"location": url})
}

// Download handles POST /upload/download with body {"url": key}.
func (h *UploadsHandler) Download(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewBadRequest("Invalid request body", "")
		}
	}
	object, err := h.uploads.Download(c.UserContext(), req.URL)
	if err != nil {
		return err
	}
	c.Attachment(object.Filename)
	if object.ContentType != "" {
		c.Set(fiber.HeaderContentType, object.ContentType)
	}
	return c.Send(object.Body)
}

// List handles GET /upload/objects?prefix=.
func (h *UploadsHandler) List(c *fiber.Ctx) error {
	objects, err := h.uploads.List(c.UserContext(), c.Query("prefix"))
	if err != nil {
		return err
	}
	return respondList(c, objects, "Objects retrieved")
}

// readUpload returns nil when the request carries no readable upload field.
func readUpload(c *fiber.Ctx) (*service.UploadInput, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return nil, nil
	}
	body, err := readFileHeader(header)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Body:        body,
	}, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
