package command

import (
	"context"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD MARK COMMAND
// Records a score for a (student, subject) pair. The grade is classified and
// stamped here, at write time, so reads never re-derive it. One mark per pair.
// ══════════════════════════════════════════════════════════════════════════════

// RecordMarkCommand contains the data to record a mark.
type RecordMarkCommand struct {
	// StudentID identifies the student being scored.
	StudentID int64

	// SubjectID identifies the subject the score is for.
	SubjectID int64

	// MarksObtained is the score, 0 to 100 inclusive.
	MarksObtained float64

	// EntryDate is optional; zero means "today".
	EntryDate time.Time
}

// RecordMarkHandler handles the RecordMarkCommand.
type RecordMarkHandler struct {
	markRepo    record.MarkRepository
	studentRepo record.StudentRepository
	subjectRepo record.SubjectRepository
	cache       AggregateInvalidator
}

// NewRecordMarkHandler creates a new RecordMarkHandler.
// The cache may be nil when aggregate caching is disabled.
func NewRecordMarkHandler(
	markRepo record.MarkRepository,
	studentRepo record.StudentRepository,
	subjectRepo record.SubjectRepository,
	cache AggregateInvalidator,
) *RecordMarkHandler {
	return &RecordMarkHandler{
		markRepo:    markRepo,
		studentRepo: studentRepo,
		subjectRepo: subjectRepo,
		cache:       cache,
	}
}

// Handle executes the record mark command.
func (h *RecordMarkHandler) Handle(ctx context.Context, cmd RecordMarkCommand) (*record.Mark, error) {
	mark, err := record.NewMark(record.NewMarkParams{
		StudentID:     cmd.StudentID,
		SubjectID:     cmd.SubjectID,
		MarksObtained: cmd.MarksObtained,
		EntryDate:     cmd.EntryDate,
	})
	if err != nil {
		return nil, err
	}

	student, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}
	subject, err := h.subjectRepo.GetByID(ctx, cmd.SubjectID)
	if err != nil {
		return nil, err
	}

	exists, err := h.markRepo.MarkExists(ctx, cmd.StudentID, cmd.SubjectID, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrDuplicateMark
	}

	if err := h.markRepo.Create(ctx, mark); err != nil {
		return nil, err
	}

	mark.StudentName = student.Name
	mark.RollNumber = student.RollNumber
	mark.SubjectName = subject.Name

	invalidateAggregates(ctx, h.cache)
	return mark, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AMEND MARK COMMAND
// Corrects a recorded score. The grade is re-classified from the new score;
// the entry date and the pair stay as recorded.
// ══════════════════════════════════════════════════════════════════════════════

// AmendMarkCommand contains the data to amend a mark.
type AmendMarkCommand struct {
	// ID identifies the mark to amend.
	ID int64

	// MarksObtained is the corrected score, 0 to 100 inclusive.
	MarksObtained float64
}

// AmendMarkHandler handles the AmendMarkCommand.
type AmendMarkHandler struct {
	markRepo record.MarkRepository
	cache    AggregateInvalidator
}

// NewAmendMarkHandler creates a new AmendMarkHandler.
// The cache may be nil when aggregate caching is disabled.
func NewAmendMarkHandler(markRepo record.MarkRepository, cache AggregateInvalidator) *AmendMarkHandler {
	return &AmendMarkHandler{markRepo: markRepo, cache: cache}
}

// Handle executes the amend mark command.
func (h *AmendMarkHandler) Handle(ctx context.Context, cmd AmendMarkCommand) (*record.Mark, error) {
	mark, err := h.markRepo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if err := mark.SetMarksObtained(cmd.MarksObtained); err != nil {
		return nil, err
	}

	if err := h.markRepo.Update(ctx, mark); err != nil {
		return nil, err
	}

	invalidateAggregates(ctx, h.cache)
	return mark, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE MARK COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RemoveMarkCommand identifies the mark to remove.
type RemoveMarkCommand struct {
	// ID identifies the mark to remove.
	ID int64
}

// RemoveMarkHandler handles the RemoveMarkCommand.
type RemoveMarkHandler struct {
	markRepo record.MarkRepository
	cache    AggregateInvalidator
}

// NewRemoveMarkHandler creates a new RemoveMarkHandler.
// The cache may be nil when aggregate caching is disabled.
func NewRemoveMarkHandler(markRepo record.MarkRepository, cache AggregateInvalidator) *RemoveMarkHandler {
	return &RemoveMarkHandler{markRepo: markRepo, cache: cache}
}

// Handle executes the remove mark command.
func (h *RemoveMarkHandler) Handle(ctx context.Context, cmd RemoveMarkCommand) error {
	if err := h.markRepo.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	invalidateAggregates(ctx, h.cache)
	return nil
}
