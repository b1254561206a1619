// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE QUERIES
// Read-side aggregations over recorded marks: the dashboard numbers, the
// top-performer ranking, the grade distribution, and per-subject averages.
// Empty data yields neutral results (zero averages, empty lists), never errors.
// ══════════════════════════════════════════════════════════════════════════════

// Top performer limit bounds.
const (
	DefaultTopLimit = 5
	MaxTopLimit     = 100
)

// AggregateCache is the optional read-through cache for aggregate results.
// A nil cache means every query hits the store.
type AggregateCache interface {
	GetTopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error)
	SetTopPerformers(ctx context.Context, limit int, performers []record.TopPerformer) error
	GetGradeDistribution(ctx context.Context) (map[grading.Grade]int, error)
	SetGradeDistribution(ctx context.Context, distribution map[grading.Grade]int) error
	GetClassAverages(ctx context.Context) ([]record.SubjectAverage, error)
	SetClassAverages(ctx context.Context, averages []record.SubjectAverage) error
}

// DashboardStats is the summary block shown on the portal dashboard.
type DashboardStats struct {
	TotalStudents int                     `json:"total_students"`
	TotalSubjects int                     `json:"total_subjects"`
	TotalMarks    int                     `json:"total_marks"`
	ClassAverages []record.SubjectAverage `json:"class_averages"`
}

// AggregateService serves aggregation queries, reading through the cache
// when one is configured.
type AggregateService struct {
	markRepo    record.MarkRepository
	studentRepo record.StudentRepository
	subjectRepo record.SubjectRepository
	cache       AggregateCache
}

// NewAggregateService creates a new AggregateService.
// The cache may be nil when aggregate caching is disabled.
func NewAggregateService(
	markRepo record.MarkRepository,
	studentRepo record.StudentRepository,
	subjectRepo record.SubjectRepository,
	cache AggregateCache,
) *AggregateService {
	return &AggregateService{
		markRepo:    markRepo,
		studentRepo: studentRepo,
		subjectRepo: subjectRepo,
		cache:       cache,
	}
}

// StudentAverage returns the mean of a student's marks, zero when the
// student has none. The student must exist.
func (s *AggregateService) StudentAverage(ctx context.Context, studentID int64) (float64, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return 0, err
	}
	return s.markRepo.AverageForStudent(ctx, studentID)
}

// ClassAverage returns the mean of a subject's marks across all students,
// zero when none are recorded. The subject must exist.
func (s *AggregateService) ClassAverage(ctx context.Context, subjectID int64) (float64, error) {
	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		return 0, err
	}
	return s.markRepo.ClassAverageForSubject(ctx, subjectID)
}

// TopPerformers returns up to limit students ranked descending by average
// marks. A non-positive limit falls back to DefaultTopLimit; limits above
// MaxTopLimit are clamped.
func (s *AggregateService) TopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	if s.cache != nil {
		if performers, err := s.cache.GetTopPerformers(ctx, limit); err == nil {
			return performers, nil
		}
	}

	performers, err := s.markRepo.TopPerformers(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetTopPerformers(ctx, limit, performers)
	}

	return performers, nil
}

// GradeDistribution returns the count of recorded marks per grade.
func (s *AggregateService) GradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	if s.cache != nil {
		if distribution, err := s.cache.GetGradeDistribution(ctx); err == nil {
			return distribution, nil
		}
	}

	distribution, err := s.markRepo.GradeDistribution(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetGradeDistribution(ctx, distribution)
	}

	return distribution, nil
}

// Dashboard returns the portal-wide dashboard summary.
func (s *AggregateService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	students, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjectRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	marks, err := s.markRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	averages, err := s.classAverages(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalStudents: students,
		TotalSubjects: subjects,
		TotalMarks:    marks,
		ClassAverages: averages,
	}, nil
}

func (s *AggregateService) classAverages(ctx context.Context) ([]record.SubjectAverage, error) {
	if s.cache != nil {
		if averages, err := s.cache.GetClassAverages(ctx); err == nil {
			return averages, nil
		}
	}

	averages, err := s.markRepo.ClassAverages(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetClassAverages(ctx, averages)
	}

	return averages, nil
}
