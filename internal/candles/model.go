package candles

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const maxNameLength = 190

// ErrNameRequired indicates a candle submission without a visitor name.
var ErrNameRequired = errors.New("candles: name is required")

// Candle records a single remembrance candle. Candles are never moderated:
// every stored row is publicly visible.
type Candle struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	Name      string    `gorm:"column:name;size:190;not null"`
	Message   string    `gorm:"column:message;type:text;not null;default:''"`
}

// TableName provides the explicit table binding for GORM.
func (Candle) TableName() string {
	return "candles"
}

// Submission carries the visitor-supplied fields for lighting a candle.
type Submission struct {
	Name    string
	Message string
}

func (s Submission) validate() (Submission, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return Submission{}, fmt.Errorf("%w: empty", ErrNameRequired)
	}
	if len(name) > maxNameLength {
		return Submission{}, fmt.Errorf("%w: exceeds %d characters", ErrNameRequired, maxNameLength)
	}
	return Submission{
		Name:    name,
		Message: strings.TrimSpace(s.Message),
	}, nil
}
