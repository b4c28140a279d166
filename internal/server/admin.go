package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sankofalabs/memorial/backend/internal/auth"
	"github.com/sankofalabs/memorial/backend/internal/gallery"
	"github.com/sankofalabs/memorial/backend/internal/tributes"
	"go.uber.org/zap"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponsePayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleAdminLogin(c *gin.Context) {
	var request loginPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	subject, err := h.credentials.Authenticate(request.Email, request.Password)
	if err != nil {
		// One generic answer for every failure mode.
		h.logger.Warn("admin login rejected", zap.Error(auth.ErrInvalidCredentials))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, expiresIn, err := h.tokens.IssueAdminToken(c.Request.Context(), subject)
	if err != nil {
		h.logger.Error("failed to issue admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponsePayload{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

func (h *httpHandler) handlePendingTributes(c *gin.Context) {
	rows, err := h.tributes.ListPending(c.Request.Context())
	if err != nil {
		h.logger.Error("pending tribute list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tributes": tributePayloadsFrom(rows)})
}

func (h *httpHandler) handleApproveTribute(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.tributes.Approve(c.Request.Context(), id); err != nil {
		h.respondReviewError(c, "tribute approve failed", id, err, tributes.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

func (h *httpHandler) handleRejectTribute(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.tributes.Reject(c.Request.Context(), id); err != nil {
		h.respondReviewError(c, "tribute reject failed", id, err, tributes.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handlePendingGallery(c *gin.Context) {
	rows, err := h.gallery.ListPending(c.Request.Context())
	if err != nil {
		h.logger.Error("pending gallery list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": galleryItemPayloadsFrom(rows)})
}

func (h *httpHandler) handleApproveGalleryItem(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.gallery.Approve(c.Request.Context(), id); err != nil {
		h.respondReviewError(c, "gallery approve failed", id, err, gallery.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

func (h *httpHandler) handleRejectGalleryItem(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if err := h.gallery.Reject(c.Request.Context(), id); err != nil {
		h.respondReviewError(c, "gallery reject failed", id, err, gallery.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) respondReviewError(c *gin.Context, message string, id int64, err, notFound error) {
	if errors.Is(err, notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	h.logger.Error(message, zap.Int64("id", id), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "review_failed"})
}
