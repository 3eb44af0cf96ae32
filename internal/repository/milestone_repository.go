package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// MilestoneRepository reads the base milestone schedule of each pace track.
type MilestoneRepository struct {
	db *sqlx.DB
}

// NewMilestoneRepository constructs the repository.
func NewMilestoneRepository(db *sqlx.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// ListByTermPaceTrack returns the base milestones for a pace and track in a term.
func (r *MilestoneRepository) ListByTermPaceTrack(ctx context.Context, termID string, pace int, track string) ([]models.Milestone, error) {
	const query = `SELECT term_id, pace, pace_track, ms_nbr, ms_type, ms_date, nbr_atmpts_allow
        FROM milestones WHERE term_id = $1 AND pace = $2 AND pace_track = $3 ORDER BY ms_nbr, ms_type`
	var milestones []models.Milestone
	if err := r.db.SelectContext(ctx, &milestones, query, termID, pace, track); err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return milestones, nil
}

// StudentMilestoneRepository persists per-student milestone overrides.
type StudentMilestoneRepository struct {
	db *sqlx.DB
}

// NewStudentMilestoneRepository constructs the repository.
func NewStudentMilestoneRepository(db *sqlx.DB) *StudentMilestoneRepository {
	return &StudentMilestoneRepository{db: db}
}

const studentMilestoneColumns = `id, term_id, student_id, pace_track, ms_nbr, ms_type, ms_date, nbr_atmpts_allow, created_at, updated_at`

// ListByStudent returns a student's overrides for a term and track. Rows for the same milestone
// come back oldest first so a caller applying them in order ends with the latest.
func (r *StudentMilestoneRepository) ListByStudent(ctx context.Context, termID, track, studentID string) ([]models.StudentMilestone, error) {
	query := `SELECT ` + studentMilestoneColumns + ` FROM student_milestones
        WHERE term_id = $1 AND pace_track = $2 AND student_id = $3 ORDER BY ms_nbr, ms_type, ms_date, updated_at`
	var overrides []models.StudentMilestone
	if err := r.db.SelectContext(ctx, &overrides, query, termID, track, studentID); err != nil {
		return nil, fmt.Errorf("list student milestones: %w", err)
	}
	return overrides, nil
}

// Create inserts a new override row.
func (r *StudentMilestoneRepository) Create(ctx context.Context, ms *models.StudentMilestone) error {
	if ms.ID == "" {
		ms.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ms.CreatedAt = now
	ms.UpdatedAt = now
	const query = `INSERT INTO student_milestones (id, term_id, student_id, pace_track, ms_nbr, ms_type, ms_date, nbr_atmpts_allow, created_at, updated_at)
        VALUES (:id, :term_id, :student_id, :pace_track, :ms_nbr, :ms_type, :ms_date, :nbr_atmpts_allow, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ms); err != nil {
		return fmt.Errorf("create student milestone: %w", err)
	}
	return nil
}

// UpdateDate moves an existing override and, when attempts is non-nil, replaces its attempt allowance.
func (r *StudentMilestoneRepository) UpdateDate(ctx context.Context, id string, date time.Time, attempts *int) error {
	var (
		res sql.Result
		err error
	)
	now := time.Now().UTC()
	if attempts != nil {
		res, err = r.db.ExecContext(ctx, `UPDATE student_milestones SET ms_date = $2, nbr_atmpts_allow = $3, updated_at = $4 WHERE id = $1`, id, date, *attempts, now)
	} else {
		res, err = r.db.ExecContext(ctx, `UPDATE student_milestones SET ms_date = $2, updated_at = $3 WHERE id = $1`, id, date, now)
	}
	if err != nil {
		return fmt.Errorf("update student milestone: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
