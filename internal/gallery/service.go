package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const objectKeyPrefix = "public/"

var (
	errMissingDatabase  = errors.New("gallery: database handle is required")
	errMissingBlobStore = errors.New("gallery: blob store is required")
)

// ServiceConfig describes the dependencies of the gallery service.
type ServiceConfig struct {
	Database *gorm.DB
	Blobs    BlobStore
	Logger   *zap.Logger
}

// Service owns the gallery lifecycle: photo uploads, video links, moderated
// listing and reviewer actions.
type Service struct {
	db     *gorm.DB
	blobs  BlobStore
	logger *zap.Logger
}

// NewService constructs the gallery service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.Blobs == nil {
		return nil, errMissingBlobStore
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, blobs: cfg.Blobs, logger: logger}, nil
}

// SubmitPhoto uploads the photo to blob storage under a fresh object key,
// then stores one unapproved gallery row pointing at its public address.
// When the row insert fails after a successful upload the blob is left behind
// and the caller sees a failure; the orphan is logged for manual cleanup.
func (s *Service) SubmitPhoto(ctx context.Context, filename, contentType string, body io.Reader, caption string) (Item, error) {
	if body == nil {
		return Item{}, fmt.Errorf("%w: no file content", ErrPhotoRequired)
	}

	key := objectKeyPrefix + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := s.blobs.Upload(ctx, key, contentType, body); err != nil {
		s.logger.Error("photo upload failed", zap.String("object_key", key), zap.Error(err))
		return Item{}, fmt.Errorf("gallery: upload: %w", err)
	}

	item, err := s.insert(ctx, MediaTypePhoto, s.blobs.PublicURL(key), caption)
	if err != nil {
		s.logger.Warn("orphaned blob after failed insert", zap.String("object_key", key))
		return Item{}, err
	}
	return item, nil
}

// SubmitVideo stores one unapproved gallery row pointing at an external video.
func (s *Service) SubmitVideo(ctx context.Context, mediaURL, caption string) (Item, error) {
	url := strings.TrimSpace(mediaURL)
	if url == "" {
		return Item{}, fmt.Errorf("%w: empty", ErrMediaURLRequired)
	}
	return s.insert(ctx, MediaTypeVideo, url, caption)
}

func (s *Service) insert(ctx context.Context, mediaType MediaType, mediaURL, caption string) (Item, error) {
	item := Item{
		MediaType: mediaType,
		MediaURL:  mediaURL,
		Caption:   strings.TrimSpace(caption),
		Approved:  false,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		s.logger.Error("gallery insert failed", zap.String("media_type", string(mediaType)), zap.Error(err))
		return Item{}, fmt.Errorf("gallery: insert: %w", err)
	}
	return item, nil
}

// ListApproved returns the publicly visible gallery items, newest first.
func (s *Service) ListApproved(ctx context.Context) ([]Item, error) {
	return s.list(ctx, true)
}

// ListPending returns the gallery items awaiting reviewer action, newest first.
func (s *Service) ListPending(ctx context.Context) ([]Item, error) {
	return s.list(ctx, false)
}

func (s *Service) list(ctx context.Context, approved bool) ([]Item, error) {
	var rows []Item
	err := s.db.WithContext(ctx).
		Where("approved = ?", approved).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		s.logger.Error("gallery list failed", zap.Bool("approved", approved), zap.Error(err))
		return nil, fmt.Errorf("gallery: list: %w", err)
	}
	return rows, nil
}

// Approve makes the gallery item with the given identity publicly visible.
// Approving twice is a no-op; an unknown identity is an error.
func (s *Service) Approve(ctx context.Context, id int64) error {
	var item Item
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		s.logger.Error("gallery lookup failed", zap.Int64("item_id", id), zap.Error(err))
		return fmt.Errorf("gallery: lookup: %w", err)
	}
	if item.Approved {
		return nil
	}
	err = s.db.WithContext(ctx).Model(&Item{}).
		Where("id = ?", id).
		Update("approved", true).Error
	if err != nil {
		s.logger.Error("gallery approve failed", zap.Int64("item_id", id), zap.Error(err))
		return fmt.Errorf("gallery: approve: %w", err)
	}
	s.logger.Info("gallery item approved", zap.Int64("item_id", id))
	return nil
}

// Reject permanently deletes the gallery item with the given identity. The
// backing blob of a photo is not removed; orphaned objects are cleaned up out
// of band.
func (s *Service) Reject(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Item{})
	if result.Error != nil {
		s.logger.Error("gallery delete failed", zap.Int64("item_id", id), zap.Error(result.Error))
		return fmt.Errorf("gallery: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.logger.Info("gallery item rejected", zap.Int64("item_id", id))
	return nil
}
