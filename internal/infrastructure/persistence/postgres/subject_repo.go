package postgres

import (
	"context"
	"time"

	"github.com/grade-portal/grade-portal/internal/domain/record"
	"github.com/grade-portal/grade-portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SubjectRepository implements record.SubjectRepository for PostgreSQL.
type SubjectRepository struct {
	conn *Connection
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(conn *Connection) *SubjectRepository {
	return &SubjectRepository{conn: conn}
}

// Create persists a new subject and assigns its ID.
func (r *SubjectRepository) Create(ctx context.Context, s *record.Subject) error {
	query := `
		INSERT INTO subjects (subject_name, max_marks, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.conn.QueryRow(ctx, query,
		s.Name,
		s.MaxMarks,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSubjectNameTaken
		}
		return shared.WrapError("subject", "Create", shared.ErrStore, "failed to create subject", err)
	}

	return nil
}

// GetByID returns a subject by ID.
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*record.Subject, error) {
	query := `
		SELECT id, subject_name, max_marks, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`

	var s record.Subject
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.MaxMarks,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSubjectNotFound
		}
		return nil, shared.WrapError("subject", "GetByID", shared.ErrStore, "failed to scan subject", err)
	}

	return &s, nil
}

// Update persists changes to an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, s *record.Subject) error {
	query := `
		UPDATE subjects SET
			subject_name = $1,
			max_marks = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		s.MaxMarks,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSubjectNameTaken
		}
		return shared.WrapError("subject", "Update", shared.ErrStore, "failed to update subject", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrSubjectNotFound
	}

	return nil
}

// Delete removes a subject. The command layer pre-checks referencing
// marks; the FK still backs that up if a mark slipped in between.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrSubjectReferenced
		}
		return shared.WrapError("subject", "Delete", shared.ErrStore, "failed to delete subject", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrSubjectNotFound
	}

	return nil
}

// List returns all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]*record.Subject, error) {
	query := `
		SELECT id, subject_name, max_marks, created_at, updated_at
		FROM subjects
		ORDER BY subject_name
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("subject", "List", shared.ErrStore, "failed to query subjects", err)
	}
	defer rows.Close()

	subjects := make([]*record.Subject, 0)
	for rows.Next() {
		var s record.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.MaxMarks, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, shared.WrapError("subject", "List", shared.ErrStore, "failed to scan subject row", err)
		}
		subjects = append(subjects, &s)
	}

	return subjects, rows.Err()
}

// SubjectNameExists reports whether another subject uses the name.
func (r *SubjectRepository) SubjectNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM subjects WHERE LOWER(subject_name) = LOWER($1) AND id != $2`

	var count int
	if err := r.conn.QueryRow(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, shared.WrapError("subject", "SubjectNameExists", shared.ErrStore, "failed to probe subject name", err)
	}

	return count > 0, nil
}

// Count returns the total number of subjects.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&count); err != nil {
		return 0, shared.WrapError("subject", "Count", shared.ErrStore, "failed to count subjects", err)
	}
	return count, nil
}
