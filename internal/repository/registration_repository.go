package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

const registrationColumns = `student_id, course, sect, term_id, COALESCE(open_status, '') AS open_status,
        i_in_progress, i_counted, pace_order, COALESCE(instrn_type, '') AS instrn_type, synthetic,
        COALESCE(prereq_satis, '') AS prereq_satis, completed, score, course_grade`

// RegistrationRepository reads and updates student course registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// ListByStudentTerm returns every registration of a student in a term, including incompletes carried into it.
func (r *RegistrationRepository) ListByStudentTerm(ctx context.Context, studentID, termID string) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM student_courses WHERE student_id = $1 AND term_id = $2 ORDER BY pace_order NULLS LAST, course`
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, studentID, termID); err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return regs, nil
}

// UpdateCompletion stores the completed flag, score and grade of a registration.
func (r *RegistrationRepository) UpdateCompletion(ctx context.Context, reg *models.Registration) error {
	const query = `UPDATE student_courses SET completed = $5, score = $6, course_grade = $7
        WHERE student_id = $1 AND course = $2 AND sect = $3 AND term_id = $4`
	if _, err := r.db.ExecContext(ctx, query, reg.StudentID, reg.CourseID, reg.Section, reg.TermID, reg.Completed, reg.Score, reg.CourseGrade); err != nil {
		return fmt.Errorf("update registration completion: %w", err)
	}
	return nil
}
