package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

func TestNewStudent(t *testing.T) {
	s, err := NewStudent(NewStudentParams{
		Name:       "  Alice Johnson ",
		RollNumber: "R-1001",
		Class:      "10-A",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice Johnson", s.Name)
	assert.Equal(t, "R-1001", s.RollNumber)
	assert.Equal(t, "10-A", s.Class)
	assert.False(t, s.RegistrationDate.IsZero(), "registration date defaults to today")
	assert.Zero(t, s.ID, "id is assigned by the store")
}

func TestNewStudent_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  NewStudentParams
		wantErr error
	}{
		{"empty name", NewStudentParams{RollNumber: "R1", Class: "A"}, shared.ErrStudentNameEmpty},
		{"blank name", NewStudentParams{Name: "   ", RollNumber: "R1", Class: "A"}, shared.ErrStudentNameEmpty},
		{"empty roll", NewStudentParams{Name: "Bob", Class: "A"}, shared.ErrRollNumberEmpty},
		{"empty class", NewStudentParams{Name: "Bob", RollNumber: "R1"}, shared.ErrStudentClassEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStudent(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestStudent_Equal(t *testing.T) {
	a := &Student{ID: 1, RollNumber: "R1"}
	b := &Student{ID: 1, RollNumber: "R1", Name: "different name"}
	c := &Student{ID: 1, RollNumber: "R2"}
	d := &Student{ID: 2, RollNumber: "R1"}

	assert.True(t, a.Equal(b), "equality is by id and roll number jointly")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestNewSubject(t *testing.T) {
	s, err := NewSubject(NewSubjectParams{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", s.Name)
	assert.Equal(t, DefaultMaxMarks, s.MaxMarks, "max marks defaults to 100")

	s, err = NewSubject(NewSubjectParams{Name: "Lab Work", MaxMarks: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, s.MaxMarks)

	_, err = NewSubject(NewSubjectParams{Name: "   "})
	assert.ErrorIs(t, err, shared.ErrSubjectNameEmpty)

	_, err = NewSubject(NewSubjectParams{Name: "Physics", MaxMarks: -10})
	assert.ErrorIs(t, err, shared.ErrInvalidMaxMarks)
}

func TestNewMark_StampsGrade(t *testing.T) {
	m, err := NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: 88})
	require.NoError(t, err)

	assert.Equal(t, grading.GradeAMinus, m.Grade, "grade is stamped at creation")
	assert.False(t, m.EntryDate.IsZero(), "entry date defaults to today")
	assert.True(t, m.IsPassing())
}

func TestNewMark_Validation(t *testing.T) {
	_, err := NewMark(NewMarkParams{StudentID: 0, SubjectID: 2, MarksObtained: 50})
	assert.ErrorIs(t, err, shared.ErrInvalidMarkTarget)

	_, err = NewMark(NewMarkParams{StudentID: 1, SubjectID: 0, MarksObtained: 50})
	assert.ErrorIs(t, err, shared.ErrInvalidMarkTarget)

	_, err = NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: -0.5})
	assert.ErrorIs(t, err, shared.ErrMarksOutOfRange)

	_, err = NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: 100.01})
	assert.ErrorIs(t, err, shared.ErrMarksOutOfRange)

	// Boundaries are inclusive.
	_, err = NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: 0})
	assert.NoError(t, err)
	_, err = NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: 100})
	assert.NoError(t, err)
}

func TestMark_SetMarksObtained_Restamps(t *testing.T) {
	m, err := NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: 92})
	require.NoError(t, err)
	require.Equal(t, grading.GradeA, m.Grade)

	require.NoError(t, m.SetMarksObtained(47.5))
	assert.Equal(t, 47.5, m.MarksObtained)
	assert.Equal(t, grading.GradeF, m.Grade, "grade is recomputed when marks change")
	assert.False(t, m.IsPassing())

	err = m.SetMarksObtained(120)
	assert.ErrorIs(t, err, shared.ErrMarksOutOfRange)
	assert.Equal(t, 47.5, m.MarksObtained, "rejected update leaves the mark unchanged")
	assert.Equal(t, grading.GradeF, m.Grade)
}

func TestMark_EntryDatePreserved(t *testing.T) {
	entry := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	m, err := NewMark(NewMarkParams{StudentID: 1, SubjectID: 2, MarksObtained: 75, EntryDate: entry})
	require.NoError(t, err)
	assert.Equal(t, entry, m.EntryDate)
}
