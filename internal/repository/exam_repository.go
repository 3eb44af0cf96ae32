package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// ExamRepository reads exam, homework and mastery attempt history.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// ListStudentExams returns a student's exams in a course restricted to the given exam types.
func (r *ExamRepository) ListStudentExams(ctx context.Context, studentID, courseID string, examTypes ...string) ([]models.StudentExam, error) {
	const query = `SELECT student_id, course, unit, exam_type, exam_score, passed, exam_dt
        FROM student_exams WHERE student_id = $1 AND course = $2 AND exam_type = ANY($3) ORDER BY exam_dt, unit`
	var exams []models.StudentExam
	if err := r.db.SelectContext(ctx, &exams, query, studentID, courseID, pq.Array(examTypes)); err != nil {
		return nil, fmt.Errorf("list student exams: %w", err)
	}
	return exams, nil
}

// ListStudentHomeworks returns a student's homework attempts in a course.
func (r *ExamRepository) ListStudentHomeworks(ctx context.Context, studentID, courseID string) ([]models.StudentHomework, error) {
	const query = `SELECT student_id, course, unit, objective, hw_type, passed
        FROM student_homeworks WHERE student_id = $1 AND course = $2`
	var hws []models.StudentHomework
	if err := r.db.SelectContext(ctx, &hws, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list student homeworks: %w", err)
	}
	return hws, nil
}

// ListMasteryExams returns the mastery exams defined for a course.
func (r *ExamRepository) ListMasteryExams(ctx context.Context, courseID string) ([]models.MasteryExam, error) {
	const query = `SELECT exam_id, course, unit, objective FROM mastery_exams WHERE course = $1 ORDER BY unit, objective`
	var exams []models.MasteryExam
	if err := r.db.SelectContext(ctx, &exams, query, courseID); err != nil {
		return nil, fmt.Errorf("list mastery exams: %w", err)
	}
	return exams, nil
}

// ListMasteryAttempts returns a student's attempts on any of the given mastery exams.
func (r *ExamRepository) ListMasteryAttempts(ctx context.Context, studentID string, examIDs []string) ([]models.MasteryAttempt, error) {
	if len(examIDs) == 0 {
		return []models.MasteryAttempt{}, nil
	}
	const query = `SELECT serial_nbr, exam_id, student_id, passed FROM mastery_attempts
        WHERE student_id = $1 AND exam_id = ANY($2) ORDER BY serial_nbr`
	var attempts []models.MasteryAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, studentID, pq.Array(examIDs)); err != nil {
		return nil, fmt.Errorf("list mastery attempts: %w", err)
	}
	return attempts, nil
}

// ListAttemptAnswers returns the per-question results of the given attempts.
func (r *ExamRepository) ListAttemptAnswers(ctx context.Context, serials []int64) ([]models.MasteryAttemptAnswer, error) {
	if len(serials) == 0 {
		return []models.MasteryAttemptAnswer{}, nil
	}
	const query = `SELECT serial_nbr, exam_id, question_nbr, correct FROM mastery_attempt_answers
        WHERE serial_nbr = ANY($1) ORDER BY serial_nbr, question_nbr`
	var answers []models.MasteryAttemptAnswer
	if err := r.db.SelectContext(ctx, &answers, query, pq.Array(serials)); err != nil {
		return nil, fmt.Errorf("list mastery attempt answers: %w", err)
	}
	return answers, nil
}
