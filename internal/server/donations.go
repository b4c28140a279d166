package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sankofalabs/memorial/backend/internal/donations"
	"go.uber.org/zap"
)

type recordDonationPayload struct {
	Reference   string  `json:"reference"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Amount      float64 `json:"amount"`
	Message     string  `json:"message"`
	IsAnonymous bool    `json:"is_anonymous"`
}

type donationPayload struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Message     string    `json:"message"`
	IsAnonymous bool      `json:"is_anonymous"`
}

func donationPayloadFrom(donation donations.Donation) donationPayload {
	return donationPayload{
		ID:          donation.ID,
		CreatedAt:   donation.CreatedAt,
		Name:        donation.Name,
		Amount:      donation.Amount,
		Message:     donation.Message,
		IsAnonymous: donation.IsAnonymous,
	}
}

func (h *httpHandler) handleListDonations(c *gin.Context) {
	rows, err := h.donations.List(c.Request.Context())
	if err != nil {
		h.logger.Error("donation list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	payloads := make([]donationPayload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, donationPayloadFrom(row))
	}
	c.JSON(http.StatusOK, gin.H{"donations": payloads})
}

func (h *httpHandler) handleDonationTotal(c *gin.Context) {
	total, err := h.donations.Total(c.Request.Context())
	if err != nil {
		h.logger.Error("donation total failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "total_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"goal":     h.donationGoal,
		"currency": h.currency,
	})
}

func (h *httpHandler) handleRecordDonation(c *gin.Context) {
	var request recordDonationPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	donation, err := h.donations.Record(c.Request.Context(), donations.Submission{
		Reference:   request.Reference,
		Name:        request.Name,
		Email:       request.Email,
		Amount:      request.Amount,
		Message:     request.Message,
		IsAnonymous: request.IsAnonymous,
	})
	switch {
	case errors.Is(err, donations.ErrReferenceRequired),
		errors.Is(err, donations.ErrEmailRequired),
		errors.Is(err, donations.ErrAmountInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "reason": err.Error()})
		return
	case errors.Is(err, donations.ErrDuplicateReference):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_reference"})
		return
	case errors.Is(err, donations.ErrPaymentUnverified):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment_unverified"})
		return
	case err != nil:
		h.logger.Error("donation record failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record_failed"})
		return
	}

	c.JSON(http.StatusCreated, donationPayloadFrom(donation))
}
