package donations

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AnonymousName replaces the supporter's name on anonymous contributions.
const AnonymousName = "Anonymous Supporter"

var (
	// ErrReferenceRequired indicates a donation without a provider transaction reference.
	ErrReferenceRequired = errors.New("donations: reference is required")
	// ErrEmailRequired indicates a donation without the payer email.
	ErrEmailRequired = errors.New("donations: email is required")
	// ErrAmountInvalid indicates a non-positive claimed amount.
	ErrAmountInvalid = errors.New("donations: amount must be positive")
	// ErrDuplicateReference indicates the provider reference was already recorded.
	ErrDuplicateReference = errors.New("donations: reference already recorded")
	// ErrPaymentUnverified indicates the provider did not confirm the charge;
	// nothing is persisted in that case.
	ErrPaymentUnverified = errors.New("donations: payment not verified")
)

// Donation is a receipt of a confirmed contribution. Rows are written only
// after the payment provider confirms the reference; the record never causes a
// financial transaction.
type Donation struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	Name        string    `gorm:"column:name;size:190;not null"`
	Amount      float64   `gorm:"column:amount;not null"`
	Message     string    `gorm:"column:message;type:text;not null;default:''"`
	IsAnonymous bool      `gorm:"column:is_anonymous;not null;default:false"`
	Reference   string    `gorm:"column:reference;size:190;not null;uniqueIndex"`
}

// TableName provides the explicit table binding for GORM.
func (Donation) TableName() string {
	return "donations"
}

// Submission carries the visitor-supplied fields of a completed contribution.
// Amount is the claimed figure; the provider-verified amount is authoritative.
type Submission struct {
	Reference   string
	Name        string
	Email       string
	Amount      float64
	Message     string
	IsAnonymous bool
}

func (s Submission) validate() (Submission, error) {
	reference := strings.TrimSpace(s.Reference)
	if reference == "" {
		return Submission{}, fmt.Errorf("%w: empty", ErrReferenceRequired)
	}
	email := strings.TrimSpace(s.Email)
	if email == "" {
		return Submission{}, fmt.Errorf("%w: empty", ErrEmailRequired)
	}
	if s.Amount <= 0 {
		return Submission{}, fmt.Errorf("%w: %v", ErrAmountInvalid, s.Amount)
	}
	return Submission{
		Reference:   reference,
		Name:        strings.TrimSpace(s.Name),
		Email:       email,
		Amount:      s.Amount,
		Message:     strings.TrimSpace(s.Message),
		IsAnonymous: s.IsAnonymous,
	}, nil
}

// displayName resolves the stored supporter name.
func (s Submission) displayName() string {
	if s.IsAnonymous || s.Name == "" {
		return AnonymousName
	}
	return s.Name
}
