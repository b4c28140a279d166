package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankofalabs/memorial/backend/internal/gallery"
	"go.uber.org/zap"
)

const photoFormField = "photo"

type submitGalleryPayload struct {
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Caption   string `json:"caption"`
}

type galleryItemPayload struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	MediaType string    `json:"media_type"`
	MediaURL  string    `json:"media_url"`
	Caption   string    `json:"caption"`
}

func galleryItemPayloadFrom(item gallery.Item) galleryItemPayload {
	return galleryItemPayload{
		ID:        item.ID,
		CreatedAt: item.CreatedAt,
		MediaType: string(item.MediaType),
		MediaURL:  item.MediaURL,
		Caption:   item.Caption,
	}
}

func galleryItemPayloadsFrom(rows []gallery.Item) []galleryItemPayload {
	payloads := make([]galleryItemPayload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, galleryItemPayloadFrom(row))
	}
	return payloads
}

func (h *httpHandler) handleListGallery(c *gin.Context) {
	rows, err := h.gallery.ListApproved(c.Request.Context())
	if err != nil {
		h.logger.Error("gallery list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": galleryItemPayloadsFrom(rows)})
}

// Photo uploads arrive as multipart forms, video links as JSON. Either way
// the stored item starts unapproved.
func (h *httpHandler) handleSubmitGalleryItem(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.handleSubmitPhoto(c)
		return
	}
	h.handleSubmitVideo(c)
}

func (h *httpHandler) handleSubmitPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile(photoFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": gallery.ErrPhotoRequired.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("photo form read failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	defer file.Close()

	item, err := h.gallery.SubmitPhoto(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		c.PostForm("caption"),
	)
	if err != nil {
		h.logger.Error("photo submission failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "submission_failed"})
		return
	}

	c.JSON(http.StatusAccepted, galleryItemPayloadFrom(item))
}

func (h *httpHandler) handleSubmitVideo(c *gin.Context) {
	var request submitGalleryPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	mediaType, err := gallery.ParseMediaType(request.MediaType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": err.Error()})
		return
	}
	if mediaType != gallery.MediaTypeVideo {
		// Photo content must come through the multipart path.
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": gallery.ErrPhotoRequired.Error()})
		return
	}

	item, err := h.gallery.SubmitVideo(c.Request.Context(), request.MediaURL, request.Caption)
	if errors.Is(err, gallery.ErrMediaURLRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("video submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	c.JSON(http.StatusAccepted, galleryItemPayloadFrom(item))
}
