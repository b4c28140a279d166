package gallery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MediaType enumerates the supported gallery media kinds.
type MediaType string

const (
	// MediaTypePhoto marks an uploaded photo stored in blob storage.
	MediaTypePhoto MediaType = "photo"
	// MediaTypeVideo marks an externally hosted video link.
	MediaTypeVideo MediaType = "video"
)

var (
	// ErrInvalidMediaType indicates an unknown media kind.
	ErrInvalidMediaType = errors.New("gallery: invalid media type")
	// ErrMediaURLRequired indicates a video submission without a link.
	ErrMediaURLRequired = errors.New("gallery: media url is required")
	// ErrPhotoRequired indicates a photo submission without file content.
	ErrPhotoRequired = errors.New("gallery: photo file is required")
	// ErrNotFound indicates that no gallery item exists with the requested identity.
	ErrNotFound = errors.New("gallery: not found")
)

// ParseMediaType validates a raw media kind value.
func ParseMediaType(raw string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(MediaTypePhoto):
		return MediaTypePhoto, nil
	case string(MediaTypeVideo):
		return MediaTypeVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, raw)
	}
}

// Item records one shared memory: an uploaded photo or a linked video.
// Items stay hidden from the public gallery until a reviewer approves them.
type Item struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	MediaType MediaType `gorm:"column:media_type;size:16;not null"`
	MediaURL  string    `gorm:"column:media_url;size:512;not null"`
	Caption   string    `gorm:"column:caption;type:text;not null;default:''"`
	Approved  bool      `gorm:"column:approved;not null;default:false;index"`
}

// TableName provides the explicit table binding for GORM.
func (Item) TableName() string {
	return "gallery"
}
