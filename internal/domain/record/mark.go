package record

import (
	"fmt"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// Mark is one score entry linking exactly one student to exactly one
// subject. At most one mark may exist per (student, subject) pair; that
// invariant is enforced at write time by the command layer, not by a
// store-level constraint.
type Mark struct {
	// ID is the opaque numeric identifier assigned by the store.
	ID int64

	// StudentID references the student the mark belongs to.
	StudentID int64

	// SubjectID references the subject the mark was earned in.
	SubjectID int64

	// MarksObtained is the score as a percentage, 0-100 inclusive,
	// regardless of the subject's maximum marks.
	MarksObtained float64

	// Grade is stamped from MarksObtained at write time and recomputed
	// whenever MarksObtained changes. Consumers treat the stored grade as
	// authoritative and never re-derive it on read.
	Grade grading.Grade

	// EntryDate is the calendar date the mark was recorded.
	EntryDate time.Time

	// Display fields populated by joined list reads; zero otherwise.
	StudentName string
	RollNumber  string
	SubjectName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMarkParams contains the fields needed to create a mark.
type NewMarkParams struct {
	StudentID     int64
	SubjectID     int64
	MarksObtained float64
	EntryDate     time.Time // zero value defaults to today
}

// NewMark creates a new mark with validated fields and the grade stamped
// from the marks obtained.
func NewMark(params NewMarkParams) (*Mark, error) {
	if params.StudentID <= 0 || params.SubjectID <= 0 {
		return nil, shared.ErrInvalidMarkTarget
	}
	if params.MarksObtained < 0 || params.MarksObtained > 100 {
		return nil, shared.ErrMarksOutOfRange
	}

	now := time.Now().UTC()
	entryDate := params.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}

	return &Mark{
		StudentID:     params.StudentID,
		SubjectID:     params.SubjectID,
		MarksObtained: params.MarksObtained,
		Grade:         grading.Classify(params.MarksObtained),
		EntryDate:     entryDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetMarksObtained updates the score and re-stamps the grade. This is the
// only way marks change, so the stored grade never drifts from the score.
func (m *Mark) SetMarksObtained(marks float64) error {
	if marks < 0 || marks > 100 {
		return shared.ErrMarksOutOfRange
	}
	m.MarksObtained = marks
	m.Grade = grading.Classify(marks)
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// IsPassing reports whether the stamped grade is a passing grade.
func (m *Mark) IsPassing() bool {
	return m.Grade.IsPassing()
}

// String returns a representation for logging.
func (m *Mark) String() string {
	return fmt.Sprintf("Mark{ID: %d, Student: %d, Subject: %d, Marks: %.1f, Grade: %s}",
		m.ID, m.StudentID, m.SubjectID, m.MarksObtained, m.Grade)
}
