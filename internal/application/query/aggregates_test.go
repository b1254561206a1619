package query

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// stubMarkRepo fulfils record.MarkRepository with canned aggregation
// results; the CRUD surface is never reached by these tests.
type stubMarkRepo struct {
	record.MarkRepository

	topCalls     int
	performers   []record.TopPerformer
	distribution map[grading.Grade]int
	averages     []record.SubjectAverage
	markCount    int
	studentAvg   float64
}

func (s *stubMarkRepo) TopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	s.topCalls++
	if limit < len(s.performers) {
		return s.performers[:limit], nil
	}
	return s.performers, nil
}

func (s *stubMarkRepo) GradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	return s.distribution, nil
}

func (s *stubMarkRepo) ClassAverages(ctx context.Context) ([]record.SubjectAverage, error) {
	return s.averages, nil
}

func (s *stubMarkRepo) Count(ctx context.Context) (int, error) {
	return s.markCount, nil
}

func (s *stubMarkRepo) AverageForStudent(ctx context.Context, studentID int64) (float64, error) {
	return s.studentAvg, nil
}

func (s *stubMarkRepo) ClassAverageForSubject(ctx context.Context, subjectID int64) (float64, error) {
	return s.studentAvg, nil
}

// memMarkRepo aggregates over real mark rows the way the store does, so the
// derived views can be checked against actual data rather than canned results.
type memMarkRepo struct {
	record.MarkRepository

	marks []*record.Mark
}

func (m *memMarkRepo) add(studentID int64, name, roll, subject string, obtained float64) {
	m.marks = append(m.marks, &record.Mark{
		StudentID:     studentID,
		StudentName:   name,
		RollNumber:    roll,
		SubjectName:   subject,
		MarksObtained: obtained,
		Grade:         grading.Classify(obtained),
	})
}

func (m *memMarkRepo) Count(ctx context.Context) (int, error) {
	return len(m.marks), nil
}

func (m *memMarkRepo) GradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	out := make(map[grading.Grade]int)
	for _, mk := range m.marks {
		out[mk.Grade]++
	}
	return out, nil
}

func (m *memMarkRepo) TopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	type agg struct {
		p     record.TopPerformer
		count int
	}
	totals := make(map[int64]*agg)
	for _, mk := range m.marks {
		a, ok := totals[mk.StudentID]
		if !ok {
			a = &agg{p: record.TopPerformer{StudentID: mk.StudentID, Name: mk.StudentName, RollNumber: mk.RollNumber}}
			totals[mk.StudentID] = a
		}
		a.p.AverageMarks += mk.MarksObtained
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

type stubStudentRepo struct {
	record.StudentRepository

	known map[int64]bool
	count int
}

func (s *stubStudentRepo) GetByID(ctx context.Context, id int64) (*record.Student, error) {
	if !s.known[id] {
		return nil, shared.ErrStudentNotFound
	}
	return &record.Student{ID: id}, nil
}

func (s *stubStudentRepo) Count(ctx context.Context) (int, error) {
	return s.count, nil
}

type stubSubjectRepo struct {
	record.SubjectRepository

	known map[int64]bool
	count int
}

func (s *stubSubjectRepo) GetByID(ctx context.Context, id int64) (*record.Subject, error) {
	if !s.known[id] {
		return nil, shared.ErrSubjectNotFound
	}
	return &record.Subject{ID: id}, nil
}

func (s *stubSubjectRepo) Count(ctx context.Context) (int, error) {
	return s.count, nil
}

// memoryCache is an in-process AggregateCache used to verify read-through
// behavior without Redis.
type memoryCache struct {
	performers   map[int][]record.TopPerformer
	distribution map[grading.Grade]int
	averages     []record.SubjectAverage
}

func newMemoryCache() *memoryCache {
	return &memoryCache{performers: make(map[int][]record.TopPerformer)}
}

func (c *memoryCache) GetTopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	p, ok := c.performers[limit]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (c *memoryCache) SetTopPerformers(ctx context.Context, limit int, performers []record.TopPerformer) error {
	c.performers[limit] = performers
	return nil
}

func (c *memoryCache) GetGradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	if c.distribution == nil {
		return nil, shared.ErrNotFound
	}
	return c.distribution, nil
}

func (c *memoryCache) SetGradeDistribution(ctx context.Context, distribution map[grading.Grade]int) error {
	c.distribution = distribution
	return nil
}

func (c *memoryCache) GetClassAverages(ctx context.Context) ([]record.SubjectAverage, error) {
	if c.averages == nil {
		return nil, shared.ErrNotFound
	}
	return c.averages, nil
}

func (c *memoryCache) SetClassAverages(ctx context.Context, averages []record.SubjectAverage) error {
	c.averages = averages
	return nil
}

func TestTopPerformersLimitDefaults(t *testing.T) {
	ctx := context.Background()
	marks := &stubMarkRepo{performers: []record.TopPerformer{
		{StudentID: 1, Name: "Alice", AverageMarks: 91},
		{StudentID: 2, Name: "Bob", AverageMarks: 84},
	}}
	svc := NewAggregateService(marks, &stubStudentRepo{}, &stubSubjectRepo{}, nil)

	performers, err := svc.TopPerformers(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, performers, 2)

	performers, err = svc.TopPerformers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, performers, 1)
	assert.Equal(t, "Alice", performers[0].Name)
}

func TestTopPerformersReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	marks := &stubMarkRepo{performers: []record.TopPerformer{{StudentID: 1, Name: "Alice", AverageMarks: 91}}}
	svc := NewAggregateService(marks, &stubStudentRepo{}, &stubSubjectRepo{}, newMemoryCache())

	_, err := svc.TopPerformers(ctx, 5)
	require.NoError(t, err)
	_, err = svc.TopPerformers(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, marks.topCalls)
}

func TestStudentAverageRequiresStudent(t *testing.T) {
	ctx := context.Background()
	svc := NewAggregateService(&stubMarkRepo{studentAvg: 72.5},
		&stubStudentRepo{known: map[int64]bool{1: true}}, &stubSubjectRepo{}, nil)

	avg, err := svc.StudentAverage(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 72.5, avg, 1e-9)

	_, err = svc.StudentAverage(ctx, 2)
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestClassAverageRequiresSubject(t *testing.T) {
	ctx := context.Background()
	svc := NewAggregateService(&stubMarkRepo{studentAvg: 66},
		&stubStudentRepo{}, &stubSubjectRepo{known: map[int64]bool{3: true}}, nil)

	avg, err := svc.ClassAverage(ctx, 3)
	require.NoError(t, err)
	assert.InDelta(t, 66, avg, 1e-9)

	_, err = svc.ClassAverage(ctx, 4)
	assert.ErrorIs(t, err, shared.ErrSubjectNotFound)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	marks := &stubMarkRepo{
		markCount: 7,
		averages: []record.SubjectAverage{
			{SubjectID: 1, SubjectName: "Math", AverageMarks: 81.5, MarkCount: 4},
		},
	}
	svc := NewAggregateService(marks, &stubStudentRepo{count: 3}, &stubSubjectRepo{count: 2}, nil)

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 2, stats.TotalSubjects)
	assert.Equal(t, 7, stats.TotalMarks)
	require.Len(t, stats.ClassAverages, 1)
	assert.Equal(t, "Math", stats.ClassAverages[0].SubjectName)
}

func TestTopPerformersExcludeUnmarkedAndSortDescending(t *testing.T) {
	ctx := context.Background()
	marks := &memMarkRepo{}
	marks.add(1, "Alice", "R-001", "Math", 90)
	marks.add(1, "Alice", "R-001", "English", 94)
	marks.add(2, "Bob", "R-002", "Math", 70)
	marks.add(3, "Carol", "R-003", "Math", 85)

	// Student 4 is registered but has no marks recorded.
	students := &stubStudentRepo{known: map[int64]bool{1: true, 2: true, 3: true, 4: true}, count: 4}
	svc := NewAggregateService(marks, students, &stubSubjectRepo{}, nil)

	performers, err := svc.TopPerformers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, performers, 3)
	assert.Equal(t, "Alice", performers[0].Name)
	assert.Equal(t, "Carol", performers[1].Name)
	assert.Equal(t, "Bob", performers[2].Name)
	assert.InDelta(t, 92, performers[0].AverageMarks, 1e-9)
	for _, p := range performers {
		assert.NotEqual(t, int64(4), p.StudentID)
	}

	performers, err = svc.TopPerformers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, performers, 2)
	assert.Equal(t, "Alice", performers[0].Name)
	assert.Equal(t, "Carol", performers[1].Name)
}

func TestGradeDistributionSumsToMarkCount(t *testing.T) {
	ctx := context.Background()
	marks := &memMarkRepo{}
	marks.add(1, "Alice", "R-001", "Math", 90)
	marks.add(1, "Alice", "R-001", "English", 94)
	marks.add(2, "Bob", "R-002", "Math", 70)
	marks.add(3, "Carol", "R-003", "Math", 85)

	svc := NewAggregateService(marks, &stubStudentRepo{}, &stubSubjectRepo{}, nil)

	distribution, err := svc.GradeDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, distribution[grading.GradeA])
	assert.Equal(t, 1, distribution[grading.GradeAMinus])
	assert.Equal(t, 1, distribution[grading.GradeBMinus])

	total, err := marks.Count(ctx)
	require.NoError(t, err)
	sum := 0
	for _, n := range distribution {
		sum += n
	}
	assert.Equal(t, total, sum)
}

func TestGradeDistributionEmpty(t *testing.T) {
	ctx := context.Background()
	marks := &stubMarkRepo{distribution: map[grading.Grade]int{}}
	svc := NewAggregateService(marks, &stubStudentRepo{}, &stubSubjectRepo{}, nil)

	distribution, err := svc.GradeDistribution(ctx)
	require.NoError(t, err)
	assert.Empty(t, distribution)
}
