package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// DefaultMaxMarks is the maximum marks assigned to a subject when none is
// specified.
const DefaultMaxMarks = 100

// Subject represents one taught subject.
type Subject struct {
	// ID is the opaque numeric identifier assigned by the store.
	ID int64

	// Name is the subject name, globally unique.
	Name string

	// MaxMarks is the maximum obtainable marks, positive.
	MaxMarks int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubjectParams contains the fields needed to create a subject.
type NewSubjectParams struct {
	Name     string
	MaxMarks int // zero defaults to DefaultMaxMarks
}

// NewSubject creates a new subject with validated fields.
func NewSubject(params NewSubjectParams) (*Subject, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.ErrSubjectNameEmpty
	}

	maxMarks := params.MaxMarks
	if maxMarks == 0 {
		maxMarks = DefaultMaxMarks
	}
	if maxMarks < 0 {
		return nil, shared.ErrInvalidMaxMarks
	}

	now := time.Now().UTC()
	return &Subject{
		Name:      name,
		MaxMarks:  maxMarks,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate re-checks the required fields.
func (s *Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return shared.ErrSubjectNameEmpty
	}
	if s.MaxMarks <= 0 {
		return shared.ErrInvalidMaxMarks
	}
	return nil
}

// String returns a representation for logging.
func (s *Subject) String() string {
	return fmt.Sprintf("Subject{ID: %d, Name: %s, MaxMarks: %d}", s.ID, s.Name, s.MaxMarks)
}
