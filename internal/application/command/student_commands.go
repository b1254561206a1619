// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Admits a new student into the portal. Roll numbers identify students on
// every report surface, so the command refuses duplicates before writing.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data to register a student.
type RegisterStudentCommand struct {
	// Name is the student's full name.
	Name string

	// RollNumber is the unique roll number.
	RollNumber string

	// Class is the class or section label.
	Class string

	// RegistrationDate is optional; zero means "today".
	RegistrationDate time.Time
}

// RegisterStudentResult contains the result of registering a student.
type RegisterStudentResult struct {
	// Student is the newly persisted student with its assigned ID.
	Student *record.Student
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo record.StudentRepository
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(studentRepo record.StudentRepository) *RegisterStudentHandler {
	return &RegisterStudentHandler{studentRepo: studentRepo}
}

// Handle executes the register student command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	student, err := record.NewStudent(record.NewStudentParams{
		Name:             cmd.Name,
		RollNumber:       cmd.RollNumber,
		Class:            cmd.Class,
		RegistrationDate: cmd.RegistrationDate,
	})
	if err != nil {
		return nil, err
	}

	taken, err := h.studentRepo.RollNumberExists(ctx, student.RollNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.ErrRollNumberTaken
	}

	if err := h.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	return &RegisterStudentResult{Student: student}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UpdateStudentCommand contains the data to update a student.
type UpdateStudentCommand struct {
	// ID identifies the student to update.
	ID int64

	// Name is the new full name.
	Name string

	// RollNumber is the new roll number; uniqueness excludes the student itself.
	RollNumber string

	// Class is the new class label.
	Class string
}

// UpdateStudentHandler handles the UpdateStudentCommand.
type UpdateStudentHandler struct {
	studentRepo record.StudentRepository
}

// NewUpdateStudentHandler creates a new UpdateStudentHandler.
func NewUpdateStudentHandler(studentRepo record.StudentRepository) *UpdateStudentHandler {
	return &UpdateStudentHandler{studentRepo: studentRepo}
}

// Handle executes the update student command.
func (h *UpdateStudentHandler) Handle(ctx context.Context, cmd UpdateStudentCommand) (*record.Student, error) {
	student, err := h.studentRepo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	updated, err := record.NewStudent(record.NewStudentParams{
		Name:             cmd.Name,
		RollNumber:       cmd.RollNumber,
		Class:            cmd.Class,
		RegistrationDate: student.RegistrationDate,
	})
	if err != nil {
		return nil, err
	}
	updated.ID = student.ID
	updated.CreatedAt = student.CreatedAt

	taken, err := h.studentRepo.RollNumberExists(ctx, updated.RollNumber, updated.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.ErrRollNumberTaken
	}

	if err := h.studentRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE STUDENT COMMAND
// Removing a student removes their marks in the same transaction; orphaned
// marks would poison every aggregate.
// ══════════════════════════════════════════════════════════════════════════════

// RemoveStudentCommand identifies the student to remove.
type RemoveStudentCommand struct {
	// ID identifies the student to remove.
	ID int64
}

// RemoveStudentHandler handles the RemoveStudentCommand.
type RemoveStudentHandler struct {
	studentRepo record.StudentRepository
	cache       AggregateInvalidator
}

// NewRemoveStudentHandler creates a new RemoveStudentHandler.
// The cache may be nil when aggregate caching is disabled.
func NewRemoveStudentHandler(studentRepo record.StudentRepository, cache AggregateInvalidator) *RemoveStudentHandler {
	return &RemoveStudentHandler{studentRepo: studentRepo, cache: cache}
}

// Handle executes the remove student command.
func (h *RemoveStudentHandler) Handle(ctx context.Context, cmd RemoveStudentCommand) error {
	if err := h.studentRepo.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	invalidateAggregates(ctx, h.cache)
	return nil
}
