package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankofalabs/memorial/backend/internal/candles"
	"go.uber.org/zap"
)

const streamHeartbeatInterval = 15 * time.Second

type lightCandlePayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type candlePayload struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
}

func (h *httpHandler) handleLightCandle(c *gin.Context) {
	var request lightCandlePayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	candle, err := h.candles.Light(c.Request.Context(), candles.Submission{
		Name:    request.Name,
		Message: request.Message,
	})
	if errors.Is(err, candles.ErrNameRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("candle submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed"})
		return
	}

	h.realtime.Publish(CandleLitEvent{
		CandleID:  candle.ID,
		Name:      candle.Name,
		Timestamp: candle.CreatedAt,
	})

	c.JSON(http.StatusCreated, candlePayload{
		ID:        candle.ID,
		CreatedAt: candle.CreatedAt,
		Name:      candle.Name,
		Message:   candle.Message,
	})
}

func (h *httpHandler) handleCandleCount(c *gin.Context) {
	count, err := h.candles.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("candle count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *httpHandler) handleCandleStream(c *gin.Context) {
	events, cancel := h.realtime.Subscribe(c.Request.Context())
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(RealtimeEventCandleLit, event)
			return true
		case <-heartbeat.C:
			c.SSEvent(realtimeEventHeartbeat, time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
