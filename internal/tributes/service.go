package tributes

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("tributes: database handle is required")

// ServiceConfig describes the dependencies of the tribute service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service owns the tribute lifecycle: public submission, moderated listing,
// reviewer actions and the shared heart tally.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the tribute service.
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

// Submit stores a new tribute awaiting review. The stored row is always
// unapproved with zero hearts, whatever the caller intended.
func (s *Service) Submit(ctx context.Context, submission Submission) (Tribute, error) {
	validated, err := submission.validate()
	if err != nil {
		return Tribute{}, err
	}

	tribute := Tribute{
		Name:     validated.Name,
		Message:  validated.Message,
		Location: validated.Location,
		Hearts:   0,
		Approved: false,
	}
	if err := s.db.WithContext(ctx).Create(&tribute).Error; err != nil {
		s.logger.Error("tribute insert failed", zap.Error(err))
		return Tribute{}, fmt.Errorf("tributes: insert: %w", err)
	}
	return tribute, nil
}

// ListApproved returns the publicly visible tributes, newest first.
func (s *Service) ListApproved(ctx context.Context) ([]Tribute, error) {
	return s.list(ctx, true)
}

// ListPending returns the tributes awaiting reviewer action, newest first.
func (s *Service) ListPending(ctx context.Context) ([]Tribute, error) {
	return s.list(ctx, false)
}

func (s *Service) list(ctx context.Context, approved bool) ([]Tribute, error) {
	var rows []Tribute
	err := s.db.WithContext(ctx).
		Where("approved = ?", approved).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		s.logger.Error("tribute list failed", zap.Bool("approved", approved), zap.Error(err))
		return nil, fmt.Errorf("tributes: list: %w", err)
	}
	return rows, nil
}

// Approve makes the tribute with the given identity publicly visible.
// Approving an already-approved tribute is a no-op; an unknown identity is an
// error and leaves the store untouched.
func (s *Service) Approve(ctx context.Context, id int64) error {
	var tribute Tribute
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&tribute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		s.logger.Error("tribute lookup failed", zap.Int64("tribute_id", id), zap.Error(err))
		return fmt.Errorf("tributes: lookup: %w", err)
	}
	if tribute.Approved {
		return nil
	}
	err = s.db.WithContext(ctx).Model(&Tribute{}).
		Where("id = ?", id).
		Update("approved", true).Error
	if err != nil {
		s.logger.Error("tribute approve failed", zap.Int64("tribute_id", id), zap.Error(err))
		return fmt.Errorf("tributes: approve: %w", err)
	}
	s.logger.Info("tribute approved", zap.Int64("tribute_id", id))
	return nil
}

// Reject permanently deletes the tribute with the given identity.
func (s *Service) Reject(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Tribute{})
	if result.Error != nil {
		s.logger.Error("tribute delete failed", zap.Int64("tribute_id", id), zap.Error(result.Error))
		return fmt.Errorf("tributes: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.logger.Info("tribute rejected", zap.Int64("tribute_id", id))
	return nil
}

// AddHeart increments the heart tally of one tribute by exactly one. The
// increment is a single server-side expression so concurrent clicks from
// different visitors are never lost. Returns the tally after the increment.
func (s *Service) AddHeart(ctx context.Context, id int64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&Tribute{}).
		Where("id = ?", id).
		UpdateColumn("hearts", gorm.Expr("hearts + 1"))
	if result.Error != nil {
		s.logger.Error("heart increment failed", zap.Int64("tribute_id", id), zap.Error(result.Error))
		return 0, fmt.Errorf("tributes: add heart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	var tribute Tribute
	if err := s.db.WithContext(ctx).Select("hearts").Where("id = ?", id).Take(&tribute).Error; err != nil {
		s.logger.Error("heart readback failed", zap.Int64("tribute_id", id), zap.Error(err))
		return 0, fmt.Errorf("tributes: add heart: %w", err)
	}
	return tribute.Hearts, nil
}
