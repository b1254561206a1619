package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements record.StudentRepository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// Create persists a new student and assigns its ID.
func (r *StudentRepository) Create(ctx context.Context, s *record.Student) error {
	query := `
		INSERT INTO students (name, roll_number, class, registration_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.conn.QueryRow(ctx, query,
		s.Name,
		s.RollNumber,
		s.Class,
		s.RegistrationDate,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrRollNumberTaken
		}
		return shared.WrapError("student", "Create", shared.ErrStore, "failed to create student", err)
	}

	return nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*record.Student, error) {
	query := `
		SELECT id, name, roll_number, class, registration_date, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	return r.scanStudent(r.conn.QueryRow(ctx, query, id))
}

// Update persists changes to an existing student.
func (r *StudentRepository) Update(ctx context.Context, s *record.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			roll_number = $2,
			class = $3,
			registration_date = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		s.RollNumber,
		s.Class,
		s.RegistrationDate,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrRollNumberTaken
		}
		return shared.WrapError("student", "Update", shared.ErrStore, "failed to update student", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student and the student's marks in one transaction.
// The marks-then-student order matters: the FK from marks blocks the
// student row until its marks are gone.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM marks WHERE student_id = $1`, id); err != nil {
			return shared.WrapError("student", "Delete", shared.ErrStore, "failed to delete student marks", err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
		if err != nil {
			return shared.WrapError("student", "Delete", shared.ErrStore, "failed to delete student", err)
		}
		if result.RowsAffected() == 0 {
			return shared.ErrStudentNotFound
		}
		return nil
	})
}

// List returns all students ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]*record.Student, error) {
	query := `
		SELECT id, name, roll_number, class, registration_date, created_at, updated_at
		FROM students
		ORDER BY name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("student", "List", shared.ErrStore, "failed to query students", err)
	}
	defer rows.Close()

	students := make([]*record.Student, 0)
	for rows.Next() {
		s, err := r.scanStudentRow(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// RollNumberExists reports whether another student uses the roll number.
func (r *StudentRepository) RollNumberExists(ctx context.Context, rollNumber string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM students WHERE roll_number = $1 AND id != $2`

	var count int
	if err := r.conn.QueryRow(ctx, query, rollNumber, excludeID).Scan(&count); err != nil {
		return false, shared.WrapError("student", "RollNumberExists", shared.ErrStore, "failed to probe roll number", err)
	}

	return count > 0, nil
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&count); err != nil {
		return 0, shared.WrapError("student", "Count", shared.ErrStore, "failed to count students", err)
	}
	return count, nil
}

// scanStudent scans a single-row query result.
func (r *StudentRepository) scanStudent(row pgx.Row) (*record.Student, error) {
	var s record.Student
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.RollNumber,
		&s.Class,
		&s.RegistrationDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, shared.WrapError("student", "Scan", shared.ErrStore, "failed to scan student", err)
	}

	return &s, nil
}

// scanStudentRow scans one row of a multi-row result.
func (r *StudentRepository) scanStudentRow(rows pgx.Rows) (*record.Student, error) {
	var s record.Student
	err := rows.Scan(
		&s.ID,
		&s.Name,
		&s.RollNumber,
		&s.Class,
		&s.RegistrationDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, shared.WrapError("student", "Scan", shared.ErrStore, "failed to scan student row", err)
	}

	return &s, nil
}
