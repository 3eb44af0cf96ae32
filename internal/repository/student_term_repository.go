package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// StudentTermRepository persists the per-term pace record of each student.
type StudentTermRepository struct {
	db *sqlx.DB
}

// NewStudentTermRepository constructs the repository.
func NewStudentTermRepository(db *sqlx.DB) *StudentTermRepository {
	return &StudentTermRepository{db: db}
}

// Find returns the record for a student in a term.
func (r *StudentTermRepository) Find(ctx context.Context, termID, studentID string) (*models.StudentTerm, error) {
	const query = `SELECT term_id, student_id, pace, pace_track, first_course, updated_at FROM student_terms WHERE term_id = $1 AND student_id = $2`
	var rec models.StudentTerm
	if err := r.db.GetContext(ctx, &rec, query, termID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student term: %w", err)
	}
	return &rec, nil
}

// Create inserts a new record.
func (r *StudentTermRepository) Create(ctx context.Context, rec *models.StudentTerm) error {
	rec.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO student_terms (term_id, student_id, pace, pace_track, first_course, updated_at)
        VALUES (:term_id, :student_id, :pace, :pace_track, :first_course, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create student term: %w", err)
	}
	return nil
}

// UpdatePaceTrackFirstCourse rewrites the computed fields of an existing record.
func (r *StudentTermRepository) UpdatePaceTrackFirstCourse(ctx context.Context, rec *models.StudentTerm) error {
	rec.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_terms SET pace = :pace, pace_track = :pace_track, first_course = :first_course, updated_at = :updated_at
        WHERE term_id = :term_id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("update student term: %w", err)
	}
	return nil
}

// Delete removes the record for a student in a term.
func (r *StudentTermRepository) Delete(ctx context.Context, termID, studentID string) error {
	const query = `DELETE FROM student_terms WHERE term_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, termID, studentID); err != nil {
		return fmt.Errorf("delete student term: %w", err)
	}
	return nil
}
