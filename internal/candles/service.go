package candles

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("candles: database handle is required")

// ServiceConfig describes the dependencies of the candle service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service persists candles and exposes the running tally.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the candle service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// Light validates the submission and stores exactly one candle row.
func (s *Service) Light(ctx context.Context, submission Submission) (Candle, error) {
	validated, err := submission.validate()
	if err != nil {
		return Candle{}, err
	}

	candle := Candle{
		Name:    validated.Name,
		Message: validated.Message,
	}
	if err := s.db.WithContext(ctx).Create(&candle).Error; err != nil {
		s.logger.Error("candle insert failed", zap.Error(err))
		return Candle{}, fmt.Errorf("candles: insert: %w", err)
	}
	return candle, nil
}

// Count returns the total number of candles lit so far.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Candle{}).Count(&count).Error; err != nil {
		s.logger.Error("candle count failed", zap.Error(err))
		return 0, fmt.Errorf("candles: count: %w", err)
	}
	return count, nil
}
