package record

import (
	"context"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the persistence contract for the record store.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository defines the persistence operations for students.
type StudentRepository interface {
	// Create persists a new student and assigns its ID.
	Create(ctx context.Context, s *Student) error

	// GetByID returns a student by ID.
	// Returns shared.ErrStudentNotFound if no such student exists.
	GetByID(ctx context.Context, id int64) (*Student, error)

	// Update persists changes to an existing student.
	// Returns shared.ErrStudentNotFound if no such student exists.
	Update(ctx context.Context, s *Student) error

	// Delete removes a student. The student's marks are removed in the
	// same transaction; student deletion is never blocked by marks.
	Delete(ctx context.Context, id int64) error

	// List returns all students ordered by name. Never fails on zero
	// rows; returns an empty slice.
	List(ctx context.Context) ([]*Student, error)

	// RollNumberExists reports whether a student other than excludeID
	// already uses the roll number. Pass excludeID 0 for creates.
	RollNumberExists(ctx context.Context, rollNumber string, excludeID int64) (bool, error)

	// Count returns the total number of students.
	Count(ctx context.Context) (int, error)
}

// SubjectRepository defines the persistence operations for subjects.
type SubjectRepository interface {
	// Create persists a new subject and assigns its ID.
	Create(ctx context.Context, s *Subject) error

	// GetByID returns a subject by ID.
	// Returns shared.ErrSubjectNotFound if no such subject exists.
	GetByID(ctx context.Context, id int64) (*Subject, error)

	// Update persists changes to an existing subject.
	Update(ctx context.Context, s *Subject) error

	// Delete removes a subject. Callers must run the referential
	// pre-check first; an unexpected FK rejection still surfaces as
	// shared.ErrSubjectReferenced.
	Delete(ctx context.Context, id int64) error

	// List returns all subjects ordered by name.
	List(ctx context.Context) ([]*Subject, error)

	// SubjectNameExists reports whether a subject other than excludeID
	// already uses the name. Pass excludeID 0 for creates.
	SubjectNameExists(ctx context.Context, name string, excludeID int64) (bool, error)

	// Count returns the total number of subjects.
	Count(ctx context.Context) (int, error)
}

// TopPerformer is one entry of the descending-average student ranking.
type TopPerformer struct {
	StudentID    int64   `json:"student_id"`
	Name         string  `json:"name"`
	RollNumber   string  `json:"roll_number"`
	AverageMarks float64 `json:"average_marks"`
}

// SubjectAverage pairs a subject with its class average.
type SubjectAverage struct {
	SubjectID    int64   `json:"subject_id"`
	SubjectName  string  `json:"subject_name"`
	AverageMarks float64 `json:"average_marks"`
	MarkCount    int     `json:"mark_count"`
}

// MarkRepository defines the persistence and aggregation operations for
// marks. Aggregation reads never fail on empty input; they return neutral
// values (0, empty map, empty slice).
type MarkRepository interface {
	// Create persists a new mark and assigns its ID.
	Create(ctx context.Context, m *Mark) error

	// GetByID returns a mark by ID with display fields populated.
	// Returns shared.ErrMarkNotFound if no such mark exists.
	GetByID(ctx context.Context, id int64) (*Mark, error)

	// Update persists the score and stamped grade of an existing mark.
	Update(ctx context.Context, m *Mark) error

	// Delete removes a mark.
	Delete(ctx context.Context, id int64) error

	// List returns all marks with display fields populated, ordered by
	// student name then subject name.
	List(ctx context.Context) ([]*Mark, error)

	// ListByStudent returns one student's marks ordered by subject name.
	ListByStudent(ctx context.Context, studentID int64) ([]*Mark, error)

	// ListBySubject returns one subject's marks ordered by student name.
	ListBySubject(ctx context.Context, subjectID int64) ([]*Mark, error)

	// MarkExists reports whether a mark other than excludeID already
	// exists for the (student, subject) pair. Pass excludeID 0 for
	// creates.
	MarkExists(ctx context.Context, studentID, subjectID, excludeID int64) (bool, error)

	// CountBySubject returns how many marks reference the subject.
	CountBySubject(ctx context.Context, subjectID int64) (int, error)

	// Count returns the total number of marks.
	Count(ctx context.Context) (int, error)

	// AverageForStudent returns the arithmetic mean of the student's
	// marks obtained, or 0 when the student has none.
	AverageForStudent(ctx context.Context, studentID int64) (float64, error)

	// ClassAverageForSubject returns the mean of all marks obtained in
	// the subject, or 0 when the subject has none.
	ClassAverageForSubject(ctx context.Context, subjectID int64) (float64, error)

	// GradeDistribution returns the count of marks per stamped grade.
	// Keys are present only for grades that occur at least once.
	GradeDistribution(ctx context.Context) (map[grading.Grade]int, error)

	// ClassAverages returns the class average per subject, for subjects
	// with at least one mark, ordered by subject name.
	ClassAverages(ctx context.Context) ([]SubjectAverage, error)

	// TopPerformers returns up to limit students ranked descending by
	// average marks across their own marks. Students with zero marks are
	// excluded. Tie order is stable but unspecified.
	TopPerformers(ctx context.Context, limit int) ([]TopPerformer, error)
}
