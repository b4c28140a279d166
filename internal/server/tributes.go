package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankofalabs/memorial/backend/internal/tributes"
	"go.uber.org/zap"
)

type submitTributePayload struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

type tributePayload struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Location  string    `json:"location"`
	Hearts    int64     `json:"hearts"`
}

func tributePayloadFrom(tribute tributes.Tribute) tributePayload {
	return tributePayload{
		ID:        tribute.ID,
		CreatedAt: tribute.CreatedAt,
		Name:      tribute.Name,
		Message:   tribute.Message,
		Location:  tribute.Location,
		Hearts:    tribute.Hearts,
	}
}

func tributePayloadsFrom(rows []tributes.Tribute) []tributePayload {
	payloads := make([]tributePayload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, tributePayloadFrom(row))
	}
	return payloads
}

func (h *httpHandler) handleListTributes(c *gin.Context) {
	rows, err := h.tributes.ListApproved(c.Request.Context())
	if err != nil {
		h.logger.Error("tribute list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tributes": tributePayloadsFrom(rows)})
}

func (h *httpHandler) handleSubmitTribute(c *gin.Context) {
	var request submitTributePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	tribute, err := h.tributes.Submit(c.Request.Context(), tributes.Submission{
		Name:     request.Name,
		Message:  request.Message,
		Location: request.Location,
	})
	if errors.Is(err, tributes.ErrNameRequired) || errors.Is(err, tributes.ErrMessageRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("tribute submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	// Accepted, not created: the tribute stays invisible until a reviewer
	// approves it.
	c.JSON(http.StatusAccepted, tributePayloadFrom(tribute))
}

func (h *httpHandler) handleAddHeart(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	hearts, err := h.tributes.AddHeart(c.Request.Context(), id)
	if errors.Is(err, tributes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		h.logger.Error("heart increment failed", zap.Int64("tribute_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "heart_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hearts": hearts})
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
