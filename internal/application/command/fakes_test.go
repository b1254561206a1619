package command

import (
	"context"
	"sort"
	"strings"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// In-memory repositories backing the handler tests.

type fakeStudentRepo struct {
	students map[int64]*record.Student
	nextID   int64
	marks    *fakeMarkRepo
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[int64]*record.Student)}
}

func (f *fakeStudentRepo) Create(ctx context.Context, s *record.Student) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id int64) (*record.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, s *record.Student) error {
	if _, ok := f.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.students[id]; !ok {
		return shared.ErrStudentNotFound
	}
	delete(f.students, id)
	if f.marks != nil {
		for mid, m := range f.marks.marks {
			if m.StudentID == id {
				delete(f.marks.marks, mid)
			}
		}
	}
	return nil
}

func (f *fakeStudentRepo) List(ctx context.Context) ([]*record.Student, error) {
	out := make([]*record.Student, 0, len(f.students))
	for _, s := range f.students {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStudentRepo) RollNumberExists(ctx context.Context, rollNumber string, excludeID int64) (bool, error) {
	for _, s := range f.students {
		if s.ID != excludeID && s.RollNumber == rollNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Count(ctx context.Context) (int, error) {
	return len(f.students), nil
}

type fakeSubjectRepo struct {
	subjects map[int64]*record.Subject
	nextID   int64
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{subjects: make(map[int64]*record.Subject)}
}

func (f *fakeSubjectRepo) Create(ctx context.Context, s *record.Subject) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.subjects[s.ID] = &cp
	return nil
}

func (f *fakeSubjectRepo) GetByID(ctx context.Context, id int64) (*record.Subject, error) {
	s, ok := f.subjects[id]
	if !ok {
		return nil, shared.ErrSubjectNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubjectRepo) Update(ctx context.Context, s *record.Subject) error {
	if _, ok := f.subjects[s.ID]; !ok {
		return shared.ErrSubjectNotFound
	}
	cp := *s
	f.subjects[s.ID] = &cp
	return nil
}

func (f *fakeSubjectRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.subjects[id]; !ok {
		return shared.ErrSubjectNotFound
	}
	delete(f.subjects, id)
	return nil
}

func (f *fakeSubjectRepo) List(ctx context.Context) ([]*record.Subject, error) {
	out := make([]*record.Subject, 0, len(f.subjects))
	for _, s := range f.subjects {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSubjectRepo) SubjectNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	for _, s := range f.subjects {
		if s.ID != excludeID && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubjectRepo) Count(ctx context.Context) (int, error) {
	return len(f.subjects), nil
}

type fakeMarkRepo struct {
	marks  map[int64]*record.Mark
	nextID int64
}

func newFakeMarkRepo() *fakeMarkRepo {
	return &fakeMarkRepo{marks: make(map[int64]*record.Mark)}
}

func (f *fakeMarkRepo) Create(ctx context.Context, m *record.Mark) error {
	f.nextID++
	m.ID = f.nextID
	cp := *m
	f.marks[m.ID] = &cp
	return nil
}

func (f *fakeMarkRepo) GetByID(ctx context.Context, id int64) (*record.Mark, error) {
	m, ok := f.marks[id]
	if !ok {
		return nil, shared.ErrMarkNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMarkRepo) Update(ctx context.Context, m *record.Mark) error {
	if _, ok := f.marks[m.ID]; !ok {
		return shared.ErrMarkNotFound
	}
	cp := *m
	f.marks[m.ID] = &cp
	return nil
}

func (f *fakeMarkRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.marks[id]; !ok {
		return shared.ErrMarkNotFound
	}
	delete(f.marks, id)
	return nil
}

func (f *fakeMarkRepo) List(ctx context.Context) ([]*record.Mark, error) {
	out := make([]*record.Mark, 0, len(f.marks))
	for _, m := range f.marks {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentName != out[j].StudentName {
			return out[i].StudentName < out[j].StudentName
		}
		return out[i].SubjectName < out[j].SubjectName
	})
	return out, nil
}

func (f *fakeMarkRepo) ListByStudent(ctx context.Context, studentID int64) ([]*record.Mark, error) {
	out := make([]*record.Mark, 0)
	for _, m := range f.marks {
		if m.StudentID == studentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectName < out[j].SubjectName })
	return out, nil
}

func (f *fakeMarkRepo) ListBySubject(ctx context.Context, subjectID int64) ([]*record.Mark, error) {
	out := make([]*record.Mark, 0)
	for _, m := range f.marks {
		if m.SubjectID == subjectID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (f *fakeMarkRepo) MarkExists(ctx context.Context, studentID, subjectID, excludeID int64) (bool, error) {
	for _, m := range f.marks {
		if m.ID != excludeID && m.StudentID == studentID && m.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMarkRepo) CountBySubject(ctx context.Context, subjectID int64) (int, error) {
	count := 0
	for _, m := range f.marks {
		if m.SubjectID == subjectID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMarkRepo) Count(ctx context.Context) (int, error) {
	return len(f.marks), nil
}

func (f *fakeMarkRepo) AverageForStudent(ctx context.Context, studentID int64) (float64, error) {
	var total float64
	count := 0
	for _, m := range f.marks {
		if m.StudentID == studentID {
			total += m.MarksObtained
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

func (f *fakeMarkRepo) ClassAverageForSubject(ctx context.Context, subjectID int64) (float64, error) {
	var total float64
	count := 0
	for _, m := range f.marks {
		if m.SubjectID == subjectID {
			total += m.MarksObtained
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

func (f *fakeMarkRepo) GradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	out := make(map[grading.Grade]int)
	for _, m := range f.marks {
		out[m.Grade]++
	}
	return out, nil
}

func (f *fakeMarkRepo) ClassAverages(ctx context.Context) ([]record.SubjectAverage, error) {
	totals := make(map[int64]*record.SubjectAverage)
	for _, m := range f.marks {
		a, ok := totals[m.SubjectID]
		if !ok {
			a = &record.SubjectAverage{SubjectID: m.SubjectID, SubjectName: m.SubjectName}
			totals[m.SubjectID] = a
		}
		a.AverageMarks += m.MarksObtained
		a.MarkCount++
	}

	out := make([]record.SubjectAverage, 0, len(totals))
	for _, a := range totals {
		a.AverageMarks /= float64(a.MarkCount)
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectName < out[j].SubjectName })
	return out, nil
}

func (f *fakeMarkRepo) TopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	type agg struct {
		p     record.TopPerformer
		count int
	}
	totals := make(map[int64]*agg)
	for _, m := range f.marks {
		a, ok := totals[m.StudentID]
		if !ok {
			a = &agg{p: record.TopPerformer{StudentID: m.StudentID, Name: m.StudentName, RollNumber: m.RollNumber}}
			totals[m.StudentID] = a
		}
		a.p.AverageMarks += m.MarksObtained
		a.count++
	}

	out := make([]record.TopPerformer, 0, len(totals))
	for _, a := range totals {
		a.p.AverageMarks /= float64(a.count)
		out = append(out, a.p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AverageMarks > out[j].AverageMarks })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeInvalidator counts invalidations so tests can assert cache hygiene.
type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.calls++
	return nil
}
