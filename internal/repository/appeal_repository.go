package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// MilestoneAppealRepository stores the append-only history of deadline changes.
type MilestoneAppealRepository struct {
	db *sqlx.DB
}

// NewMilestoneAppealRepository constructs the repository.
func NewMilestoneAppealRepository(db *sqlx.DB) *MilestoneAppealRepository {
	return &MilestoneAppealRepository{db: db}
}

// ListByStudent returns every appeal of a student in a term, oldest first.
func (r *MilestoneAppealRepository) ListByStudent(ctx context.Context, termID, studentID string) ([]models.MilestoneAppeal, error) {
	const query = `SELECT id, term_id, student_id, appeal_date_time, appeal_type, pace, pace_track, ms_nbr, ms_type,
        prior_ms_dt, new_ms_dt, nbr_atmpts_allow, COALESCE(circumstances, '') AS circumstances,
        COALESCE(comment, '') AS comment, COALESCE(interviewer, '') AS interviewer
        FROM milestone_appeals WHERE term_id = $1 AND student_id = $2 ORDER BY appeal_date_time`
	var appeals []models.MilestoneAppeal
	if err := r.db.SelectContext(ctx, &appeals, query, termID, studentID); err != nil {
		return nil, fmt.Errorf("list milestone appeals: %w", err)
	}
	return appeals, nil
}

// Create appends an appeal record.
func (r *MilestoneAppealRepository) Create(ctx context.Context, appeal *models.MilestoneAppeal) error {
	if appeal.ID == "" {
		appeal.ID = uuid.NewString()
	}
	if appeal.AppealDateTime.IsZero() {
		appeal.AppealDateTime = time.Now().UTC()
	}
	const query = `INSERT INTO milestone_appeals (id, term_id, student_id, appeal_date_time, appeal_type, pace, pace_track, ms_nbr, ms_type,
        prior_ms_dt, new_ms_dt, nbr_atmpts_allow, circumstances, comment, interviewer)
        VALUES (:id, :term_id, :student_id, :appeal_date_time, :appeal_type, :pace, :pace_track, :ms_nbr, :ms_type,
        :prior_ms_dt, :new_ms_dt, :nbr_atmpts_allow, :circumstances, :comment, :interviewer)`
	if _, err := r.db.NamedExecContext(ctx, query, appeal); err != nil {
		return fmt.Errorf("create milestone appeal: %w", err)
	}
	return nil
}

// PaceAppealRepository reads the older pace appeal records.
type PaceAppealRepository struct {
	db *sqlx.DB
}

// NewPaceAppealRepository constructs the repository.
func NewPaceAppealRepository(db *sqlx.DB) *PaceAppealRepository {
	return &PaceAppealRepository{db: db}
}

// ListByStudent returns a student's pace appeals in a term.
func (r *PaceAppealRepository) ListByStudent(ctx context.Context, termID, studentID string) ([]models.PaceAppeal, error) {
	const query = `SELECT term_id, student_id, appeal_dt, pace, pace_track, ms_nbr, ms_type, ms_date, new_deadline_dt,
        nbr_atmpts_allow, COALESCE(circumstances, '') AS circumstances, COALESCE(comment, '') AS comment,
        COALESCE(interviewer, '') AS interviewer
        FROM pace_appeals WHERE term_id = $1 AND student_id = $2 ORDER BY appeal_dt`
	var appeals []models.PaceAppeal
	if err := r.db.SelectContext(ctx, &appeals, query, termID, studentID); err != nil {
		return nil, fmt.Errorf("list pace appeals: %w", err)
	}
	return appeals, nil
}
