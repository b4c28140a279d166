package tributes

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const maxNameLength = 190

var (
	// ErrNameRequired indicates a tribute submission without a visitor name.
	ErrNameRequired = errors.New("tributes: name is required")
	// ErrMessageRequired indicates a tribute submission without a message.
	ErrMessageRequired = errors.New("tributes: message is required")
	// ErrNotFound indicates that no tribute exists with the requested identity.
	ErrNotFound = errors.New("tributes: not found")
)

// Tribute records a message of remembrance left by a visitor. New tributes
// stay hidden from the public wall until a reviewer approves them.
type Tribute struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	Name      string    `gorm:"column:name;size:190;not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Location  string    `gorm:"column:location;size:190;not null;default:''"`
	Hearts    int64     `gorm:"column:hearts;not null;default:0"`
	Approved  bool      `gorm:"column:approved;not null;default:false;index"`
}

// TableName provides the explicit table binding for GORM.
func (Tribute) TableName() string {
	return "tributes"
}

// Submission carries the visitor-supplied fields of a new tribute. Moderation
// and heart-count fields are deliberately absent: the service assigns them.
type Submission struct {
	Name     string
	Message  string
	Location string
}

func (s Submission) validate() (Submission, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return Submission{}, fmt.Errorf("%w: empty", ErrNameRequired)
	}
	if len(name) > maxNameLength {
		return Submission{}, fmt.Errorf("%w: exceeds %d characters", ErrNameRequired, maxNameLength)
	}
	message := strings.TrimSpace(s.Message)
	if message == "" {
		return Submission{}, fmt.Errorf("%w: empty", ErrMessageRequired)
	}
	return Submission{
		Name:     name,
		Message:  message,
		Location: strings.TrimSpace(s.Location),
	}, nil
}
