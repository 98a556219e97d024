package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
	service "github.com/fathima-sithara/cloud-media-platform/internal/services"
)

type Handler struct {
	auth  *service.AuthService
	media *service.MediaService
	log   *zap.SugaredLogger
}

func NewHandler(auth *service.AuthService, media *service.MediaService, log *zap.SugaredLogger) *Handler {
	return &Handler{auth: auth, media: media, log: log}
}

// POST /api/media (multipart: file, description, tags)
func (h *Handler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: file is required", apperr.ErrValidation))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: cannot open file", apperr.ErrValidation))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: read upload: %v", apperr.ErrExternal, err))
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	var tags []string
	if raw := c.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return h.fail(c, fmt.Errorf("%w: tags must be a JSON array of strings", apperr.ErrValidation))
		}
	}

	media, err := h.media.Upload(c.Context(), currentUserID(c), service.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
		Description: c.FormValue("description"),
		Tags:        tags,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// GET /api/media?page&pageSize&mediaType
func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.media.List(c.Context(), currentUserID(c),
		c.QueryInt("page", 1), c.QueryInt("pageSize", 0), c.Query("mediaType"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(page)
}

// GET /api/media/search?query&page&pageSize
func (h *Handler) Search(c *fiber.Ctx) error {
	page, err := h.media.Search(c.Context(), currentUserID(c), c.Query("query"),
		c.QueryInt("page", 1), c.QueryInt("pageSize", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(page)
}

// GET /api/media/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	media, err := h.media.Get(c.Context(), currentUserID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(media)
}

// GET /api/media/:id/url
func (h *Handler) DownloadURL(c *fiber.Ctx) error {
	url, err := h.media.DownloadURL(c.Context(), currentUserID(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

type updateReq struct {
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

// PUT /api/media/:id
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateReq
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fmt.Errorf("%w: invalid body", apperr.ErrValidation))
	}
	media, err := h.media.Update(c.Context(), currentUserID(c), c.Params("id"), service.UpdateInput{
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(media)
}

// DELETE /api/media/:id
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.media.Delete(c.Context(), currentUserID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/health
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "service": "cloud-media-platform"})
}
