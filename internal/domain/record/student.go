// Package record contains the academic-record domain model: students,
// subjects and marks, with their validation rules and repository contracts.
// Business logic only, no external dependencies.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// DateLayout is the calendar-date format used for registration and entry
// dates throughout the system.
const DateLayout = "2006-01-02"

// Student represents one enrolled student.
type Student struct {
	// ID is the opaque numeric identifier assigned by the store.
	ID int64

	// Name is the student's full name.
	Name string

	// RollNumber is the externally assigned identifier, globally unique.
	RollNumber string

	// Class is the class/section label, e.g. "10-A".
	Class string

	// RegistrationDate is the calendar date of registration.
	RegistrationDate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStudentParams contains the fields needed to create a student.
type NewStudentParams struct {
	Name             string
	RollNumber       string
	Class            string
	RegistrationDate time.Time // zero value defaults to today
}

// NewStudent creates a new student with all required fields validated.
// The ID is zero until the store assigns one.
func NewStudent(params NewStudentParams) (*Student, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.ErrStudentNameEmpty
	}

	roll := strings.TrimSpace(params.RollNumber)
	if roll == "" {
		return nil, shared.ErrRollNumberEmpty
	}

	class := strings.TrimSpace(params.Class)
	if class == "" {
		return nil, shared.ErrStudentClassEmpty
	}

	now := time.Now().UTC()
	regDate := params.RegistrationDate
	if regDate.IsZero() {
		regDate = now
	}

	return &Student{
		Name:             name,
		RollNumber:       roll,
		Class:            class,
		RegistrationDate: regDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Validate re-checks the required fields, for entities populated directly.
func (s *Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return shared.ErrStudentNameEmpty
	}
	if strings.TrimSpace(s.RollNumber) == "" {
		return shared.ErrRollNumberEmpty
	}
	if strings.TrimSpace(s.Class) == "" {
		return shared.ErrStudentClassEmpty
	}
	return nil
}

// Equal reports identity equality: id and roll number jointly.
func (s *Student) Equal(other *Student) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ID == other.ID && s.RollNumber == other.RollNumber
}

// String returns a representation for logging.
func (s *Student) String() string {
	return fmt.Sprintf("Student{ID: %d, Roll: %s, Name: %s, Class: %s}",
		s.ID, s.RollNumber, s.Name, s.Class)
}
