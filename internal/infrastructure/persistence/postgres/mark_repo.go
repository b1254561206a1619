package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/grade-portal/grade-portal/internal/domain/grading"
	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// markSelect joins students and subjects so list reads carry the display
// fields the reporting layer needs.
const markSelect = `
	SELECT m.id, m.student_id, m.subject_id, m.marks_obtained, m.grade,
	       m.entry_date, m.created_at, m.updated_at,
	       s.name AS student_name, s.roll_number, sub.subject_name
	FROM marks m
	JOIN students s ON m.student_id = s.id
	JOIN subjects sub ON m.subject_id = sub.id
`

// MarkRepository implements record.MarkRepository for PostgreSQL.
type MarkRepository struct {
	conn *Connection
}

// NewMarkRepository creates a new MarkRepository.
func NewMarkRepository(conn *Connection) *MarkRepository {
	return &MarkRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create persists a new mark and assigns its ID.
func (r *MarkRepository) Create(ctx context.Context, m *record.Mark) error {
	query := `
		INSERT INTO marks (student_id, subject_id, marks_obtained, grade, entry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.conn.QueryRow(ctx, query,
		m.StudentID,
		m.SubjectID,
		m.MarksObtained,
		string(m.Grade),
		m.EntryDate,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrInvalidMarkTarget
		}
		return shared.WrapError("mark", "Create", shared.ErrStore, "failed to create mark", err)
	}

	return nil
}

// GetByID returns a mark by ID with display fields populated.
func (r *MarkRepository) GetByID(ctx context.Context, id int64) (*record.Mark, error) {
	row := r.conn.QueryRow(ctx, markSelect+` WHERE m.id = $1`, id)
	m, err := scanMark(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrMarkNotFound
		}
		return nil, shared.WrapError("mark", "GetByID", shared.ErrStore, "failed to scan mark", err)
	}
	return m, nil
}

// Update persists the score and the re-stamped grade of a mark.
func (r *MarkRepository) Update(ctx context.Context, m *record.Mark) error {
	query := `
		UPDATE marks SET
			marks_obtained = $1,
			grade = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query,
		m.MarksObtained,
		string(m.Grade),
		time.Now().UTC(),
		m.ID,
	)
	if err != nil {
		return shared.WrapError("mark", "Update", shared.ErrStore, "failed to update mark", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrMarkNotFound
	}

	return nil
}

// Delete removes a mark.
func (r *MarkRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM marks WHERE id = $1`, id)
	if err != nil {
		return shared.WrapError("mark", "Delete", shared.ErrStore, "failed to delete mark", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrMarkNotFound
	}

	return nil
}

// List returns all marks ordered by student name then subject name.
func (r *MarkRepository) List(ctx context.Context) ([]*record.Mark, error) {
	return r.queryMarks(ctx, markSelect+` ORDER BY s.name, sub.subject_name`)
}

// ListByStudent returns one student's marks ordered by subject name.
func (r *MarkRepository) ListByStudent(ctx context.Context, studentID int64) ([]*record.Mark, error) {
	return r.queryMarks(ctx, markSelect+` WHERE m.student_id = $1 ORDER BY sub.subject_name`, studentID)
}

// ListBySubject returns one subject's marks ordered by student name.
func (r *MarkRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*record.Mark, error) {
	return r.queryMarks(ctx, markSelect+` WHERE m.subject_id = $1 ORDER BY s.name`, subjectID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Probes & Counts
// ─────────────────────────────────────────────────────────────────────────────

// MarkExists reports whether a mark other than excludeID exists for the pair.
func (r *MarkRepository) MarkExists(ctx context.Context, studentID, subjectID, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM marks WHERE student_id = $1 AND subject_id = $2 AND id != $3`

	var count int
	if err := r.conn.QueryRow(ctx, query, studentID, subjectID, excludeID).Scan(&count); err != nil {
		return false, shared.WrapError("mark", "MarkExists", shared.ErrStore, "failed to probe mark pair", err)
	}

	return count > 0, nil
}

// CountBySubject returns how many marks reference the subject.
func (r *MarkRepository) CountBySubject(ctx context.Context, subjectID int64) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM marks WHERE subject_id = $1`, subjectID).Scan(&count)
	if err != nil {
		return 0, shared.WrapError("mark", "CountBySubject", shared.ErrStore, "failed to count marks", err)
	}
	return count, nil
}

// Count returns the total number of marks.
func (r *MarkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM marks`).Scan(&count); err != nil {
		return 0, shared.WrapError("mark", "Count", shared.ErrStore, "failed to count marks", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation Reads
// ─────────────────────────────────────────────────────────────────────────────

// AverageForStudent returns the mean of the student's marks, 0 when none.
func (r *MarkRepository) AverageForStudent(ctx context.Context, studentID int64) (float64, error) {
	query := `SELECT COALESCE(AVG(marks_obtained), 0) FROM marks WHERE student_id = $1`

	var avg float64
	if err := r.conn.QueryRow(ctx, query, studentID).Scan(&avg); err != nil {
		return 0, shared.WrapError("mark", "AverageForStudent", shared.ErrStore, "failed to compute average", err)
	}

	return avg, nil
}

// ClassAverageForSubject returns the mean of the subject's marks, 0 when none.
func (r *MarkRepository) ClassAverageForSubject(ctx context.Context, subjectID int64) (float64, error) {
	query := `SELECT COALESCE(AVG(marks_obtained), 0) FROM marks WHERE subject_id = $1`

	var avg float64
	if err := r.conn.QueryRow(ctx, query, subjectID).Scan(&avg); err != nil {
		return 0, shared.WrapError("mark", "ClassAverageForSubject", shared.ErrStore, "failed to compute class average", err)
	}

	return avg, nil
}

// GradeDistribution returns the count of marks per stamped grade.
func (r *MarkRepository) GradeDistribution(ctx context.Context) (map[grading.Grade]int, error) {
	query := `SELECT grade, COUNT(*) FROM marks GROUP BY grade`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("mark", "GradeDistribution", shared.ErrStore, "failed to query distribution", err)
	}
	defer rows.Close()

	distribution := make(map[grading.Grade]int)
	for rows.Next() {
		var grade string
		var count int
		if err := rows.Scan(&grade, &count); err != nil {
			return nil, shared.WrapError("mark", "GradeDistribution", shared.ErrStore, "failed to scan distribution row", err)
		}
		distribution[grading.Grade(grade)] = count
	}

	return distribution, rows.Err()
}

// ClassAverages returns the class average per subject with marks.
func (r *MarkRepository) ClassAverages(ctx context.Context) ([]record.SubjectAverage, error) {
	query := `
		SELECT sub.id, sub.subject_name, AVG(m.marks_obtained), COUNT(*)
		FROM subjects sub
		JOIN marks m ON m.subject_id = sub.id
		GROUP BY sub.id, sub.subject_name
		ORDER BY sub.subject_name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("mark", "ClassAverages", shared.ErrStore, "failed to query class averages", err)
	}
	defer rows.Close()

	averages := make([]record.SubjectAverage, 0)
	for rows.Next() {
		var a record.SubjectAverage
		if err := rows.Scan(&a.SubjectID, &a.SubjectName, &a.AverageMarks, &a.MarkCount); err != nil {
			return nil, shared.WrapError("mark", "ClassAverages", shared.ErrStore, "failed to scan class average row", err)
		}
		averages = append(averages, a)
	}

	return averages, rows.Err()
}

// TopPerformers returns up to limit students ranked descending by average
// marks. Students with no marks never join the ranking.
func (r *MarkRepository) TopPerformers(ctx context.Context, limit int) ([]record.TopPerformer, error) {
	query := `
		SELECT s.id, s.name, s.roll_number, AVG(m.marks_obtained) AS average_marks
		FROM students s
		JOIN marks m ON s.id = m.student_id
		GROUP BY s.id, s.name, s.roll_number
		ORDER BY average_marks DESC
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, shared.WrapError("mark", "TopPerformers", shared.ErrStore, "failed to query top performers", err)
	}
	defer rows.Close()

	performers := make([]record.TopPerformer, 0, limit)
	for rows.Next() {
		var p record.TopPerformer
		if err := rows.Scan(&p.StudentID, &p.Name, &p.RollNumber, &p.AverageMarks); err != nil {
			return nil, shared.WrapError("mark", "TopPerformers", shared.ErrStore, "failed to scan performer row", err)
		}
		performers = append(performers, p)
	}

	return performers, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *MarkRepository) queryMarks(ctx context.Context, query string, args ...interface{}) ([]*record.Mark, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError("mark", "List", shared.ErrStore, "failed to query marks", err)
	}
	defer rows.Close()

	marks := make([]*record.Mark, 0)
	for rows.Next() {
		m, err := scanMark(rows)
		if err != nil {
			return nil, shared.WrapError("mark", "List", shared.ErrStore, "failed to scan mark row", err)
		}
		marks = append(marks, m)
	}

	return marks, rows.Err()
}

// scanMark scans the markSelect column set from a row or rows cursor.
func scanMark(row pgx.Row) (*record.Mark, error) {
	var m record.Mark
	var grade string

	err := row.Scan(
		&m.ID,
		&m.StudentID,
		&m.SubjectID,
		&m.MarksObtained,
		&grade,
		&m.EntryDate,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.StudentName,
		&m.RollNumber,
		&m.SubjectName,
	)
	if err != nil {
		return nil, err
	}

	m.Grade = grading.Grade(grade)
	return &m, nil
}
