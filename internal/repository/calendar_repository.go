package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// CalendarRepository reads term weeks and campus calendar days.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListTermWeeks returns the weeks of a term in week order.
func (r *CalendarRepository) ListTermWeeks(ctx context.Context, termID string) ([]models.TermWeek, error) {
	const query = `SELECT term_id, week_nbr, start_date, end_date FROM term_weeks WHERE term_id = $1 ORDER BY week_nbr`
	var weeks []models.TermWeek
	if err := r.db.SelectContext(ctx, &weeks, query, termID); err != nil {
		return nil, fmt.Errorf("list term weeks: %w", err)
	}
	return weeks, nil
}

// ListDaysByDescription returns campus calendar days whose description is one of descs.
func (r *CalendarRepository) ListDaysByDescription(ctx context.Context, descs ...string) ([]models.CampusCalendarDay, error) {
	const query = `SELECT campus_dt, dt_desc FROM campus_calendar WHERE dt_desc = ANY($1) ORDER BY campus_dt`
	var days []models.CampusCalendarDay
	if err := r.db.SelectContext(ctx, &days, query, pq.Array(descs)); err != nil {
		return nil, fmt.Errorf("list campus calendar days: %w", err)
	}
	return days, nil
}
