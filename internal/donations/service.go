package donations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minorUnitsPerMajor = 100

var (
	errMissingDatabase = errors.New("donations: database handle is required")
	errMissingVerifier = errors.New("donations: payment verifier is required")
)

// Verifier confirms a provider transaction reference and returns the settled
// amount in minor units together with its currency.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (int64, string, error)
}

// ServiceConfig describes the dependencies of the donation service.
type ServiceConfig struct {
	Database *gorm.DB
	Verifier Verifier
	Currency string
	Logger   *zap.Logger
}

// Service records confirmed contributions and exposes the gratitude wall.
type Service struct {
	db       *gorm.DB
	verifier Verifier
	currency string
	logger   *zap.Logger
}

// NewService constructs the donation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Verifier == nil {
		return nil, errMissingVerifier
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       cfg.Database,
		verifier: cfg.Verifier,
		currency: strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		logger:   logger,
	}, nil
}

// Record verifies the provider reference and persists exactly one donation
// row. The verified provider amount is stored, not the caller's claim. A
// reference that fails verification writes nothing.
func (s *Service) Record(ctx context.Context, submission Submission) (Donation, error) {
	validated, err := submission.validate()
	if err != nil {
		return Donation{}, err
	}

	var existing Donation
	err = s.db.WithContext(ctx).Where("reference = ?", validated.Reference).Take(&existing).Error
	if err == nil {
		return Donation{}, fmt.Errorf("%w: %s", ErrDuplicateReference, validated.Reference)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("donation lookup failed", zap.String("reference", validated.Reference), zap.Error(err))
		return Donation{}, fmt.Errorf("donations: lookup: %w", err)
	}

	amountMinor, currency, err := s.verifier.VerifyTransaction(ctx, validated.Reference)
	if err != nil {
		s.logger.Warn("donation verification failed",
			zap.String("reference", validated.Reference),
			zap.Error(err))
		return Donation{}, fmt.Errorf("%w: %v", ErrPaymentUnverified, err)
	}
	if s.currency != "" && !strings.EqualFold(currency, s.currency) {
		s.logger.Warn("donation currency mismatch",
			zap.String("reference", validated.Reference),
			zap.String("currency", currency))
		return Donation{}, fmt.Errorf("%w: settled in %s", ErrPaymentUnverified, currency)
	}

	donation := Donation{
		Name:        validated.displayName(),
		Amount:      float64(amountMinor) / minorUnitsPerMajor,
		Message:     validated.Message,
		IsAnonymous: validated.IsAnonymous,
		Reference:   validated.Reference,
	}
	if err := s.db.WithContext(ctx).Create(&donation).Error; err != nil {
		s.logger.Error("donation insert failed", zap.String("reference", validated.Reference), zap.Error(err))
		return Donation{}, fmt.Errorf("donations: insert: %w", err)
	}
	s.logger.Info("donation recorded",
		zap.Int64("donation_id", donation.ID),
		zap.Float64("amount", donation.Amount))
	return donation, nil
}

// List returns all recorded donations, newest first.
func (s *Service) List(ctx context.Context) ([]Donation, error) {
	var rows []Donation
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		s.logger.Error("donation list failed", zap.Error(err))
		return nil, fmt.Errorf("donations: list: %w", err)
	}
	return rows, nil
}

// Total returns the sum of all recorded contribution amounts.
func (s *Service) Total(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		s.logger.Error("donation total failed", zap.Error(err))
		return 0, fmt.Errorf("donations: total: %w", err)
	}
	return total, nil
}
