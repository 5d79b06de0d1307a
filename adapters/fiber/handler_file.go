package fiber

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/portal/core"
)

// uploadAvatar buffers the multipart file fully in memory; the size limit is
// enforced inside the file service before any image processing starts.
func (h *Handler) uploadAvatar(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return h.handleError(c, core.ErrNoFileUploaded)
	}

	f, err := fh.Open()
	if err != nil {
		return h.handleError(c, core.ErrNoFileUploaded)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return h.handleError(c, err)
	}

	avatarURL, err := h.files.UploadAvatar(c.Context(), currentUser(c).ID, buf, fh.Header.Get("Content-Type"))
	if err != nil {
		return h.handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   "Avatar uploaded successfully",
		"avatarUrl": avatarURL,
	})
}

func (h *Handler) getAvatar(c fiber.Ctx) error {
	return h.streamFile(c, core.BucketAvatars, "image/jpeg")
}

func (h *Handler) getDocument(c fiber.Ctx) error {
	return h.streamFile(c, core.BucketDocuments, "application/octet-stream")
}

// streamFile hands the object body straight to the response writer, which
// closes it once the body has been sent.
func (h *Handler) streamFile(c fiber.Ctx, bucket, fallbackType string) error {
	body, info, err := h.files.Fetch(c.Context(), bucket, c.Params("filename"))
	if err != nil {
		return h.handleError(c, err)
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = fallbackType
	}
	c.Set(fiber.HeaderContentType, contentType)

	return c.SendStream(body, int(info.Size))
}
