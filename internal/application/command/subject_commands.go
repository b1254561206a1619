package command

import (
	"context"

	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD SUBJECT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AddSubjectCommand contains the data to add a subject.
type AddSubjectCommand struct {
	// Name is the subject name.
	Name string

	// MaxMarks is the maximum obtainable marks; zero means the default of 100.
	MaxMarks int
}

// AddSubjectHandler handles the AddSubjectCommand.
type AddSubjectHandler struct {
	subjectRepo record.SubjectRepository
}

// NewAddSubjectHandler creates a new AddSubjectHandler.
func NewAddSubjectHandler(subjectRepo record.SubjectRepository) *AddSubjectHandler {
	return &AddSubjectHandler{subjectRepo: subjectRepo}
}

// Handle executes the add subject command.
func (h *AddSubjectHandler) Handle(ctx context.Context, cmd AddSubjectCommand) (*record.Subject, error) {
	subject, err := record.NewSubject(record.NewSubjectParams{Name: cmd.Name, MaxMarks: cmd.MaxMarks})
	if err != nil {
		return nil, err
	}

	taken, err := h.subjectRepo.SubjectNameExists(ctx, subject.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.ErrSubjectNameTaken
	}

	if err := h.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}

	return subject, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SUBJECT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSubjectCommand contains the data to update a subject.
type UpdateSubjectCommand struct {
	// ID identifies the subject to update.
	ID int64

	// Name is the new subject name.
	Name string

	// MaxMarks is the new maximum obtainable marks; zero keeps the current value.
	MaxMarks int
}

// UpdateSubjectHandler handles the UpdateSubjectCommand.
type UpdateSubjectHandler struct {
	subjectRepo record.SubjectRepository
}

// NewUpdateSubjectHandler creates a new UpdateSubjectHandler.
func NewUpdateSubjectHandler(subjectRepo record.SubjectRepository) *UpdateSubjectHandler {
	return &UpdateSubjectHandler{subjectRepo: subjectRepo}
}

// Handle executes the update subject command.
func (h *UpdateSubjectHandler) Handle(ctx context.Context, cmd UpdateSubjectCommand) (*record.Subject, error) {
	subject, err := h.subjectRepo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	maxMarks := cmd.MaxMarks
	if maxMarks == 0 {
		maxMarks = subject.MaxMarks
	}

	updated, err := record.NewSubject(record.NewSubjectParams{Name: cmd.Name, MaxMarks: maxMarks})
	if err != nil {
		return nil, err
	}
	updated.ID = subject.ID
	updated.CreatedAt = subject.CreatedAt

	taken, err := h.subjectRepo.SubjectNameExists(ctx, updated.Name, updated.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.ErrSubjectNameTaken
	}

	if err := h.subjectRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE SUBJECT COMMAND
// A subject with recorded marks cannot be removed; the marks must go first.
// The store's foreign key backs this check up against races.
// ══════════════════════════════════════════════════════════════════════════════

// RemoveSubjectCommand identifies the subject to remove.
type RemoveSubjectCommand struct {
	// ID identifies the subject to remove.
	ID int64
}

// RemoveSubjectHandler handles the RemoveSubjectCommand.
type RemoveSubjectHandler struct {
	subjectRepo record.SubjectRepository
	markRepo    record.MarkRepository
}

// NewRemoveSubjectHandler creates a new RemoveSubjectHandler.
func NewRemoveSubjectHandler(subjectRepo record.SubjectRepository, markRepo record.MarkRepository) *RemoveSubjectHandler {
	return &RemoveSubjectHandler{subjectRepo: subjectRepo, markRepo: markRepo}
}

// Handle executes the remove subject command.
func (h *RemoveSubjectHandler) Handle(ctx context.Context, cmd RemoveSubjectCommand) error {
	count, err := h.markRepo.CountBySubject(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrSubjectReferenced
	}

	return h.subjectRepo.Delete(ctx, cmd.ID)
}
