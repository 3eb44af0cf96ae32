package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

const termSelect = `SELECT id, start_date, end_date, academic_year, active_index,
	drop_deadline, withdraw_deadline, incomplete_deadline FROM terms`

// TermRepository reads the term table.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// List returns terms in chronological order.
func (r *TermRepository) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	var where []string
	var args []interface{}

	switch filter.Scope {
	case models.TermScopePast:
		where = append(where, "active_index < 0")
	case models.TermScopeActive:
		where = append(where, "active_index = 0")
	case models.TermScopeFuture:
		where = append(where, "active_index > 0")
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		where = append(where, fmt.Sprintf("academic_year = $%d", len(args)))
	}

	query := termSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date"

	var terms []models.Term
	if err := r.db.SelectContext(ctx, &terms, query, args...); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	return terms, nil
}

// FindByID returns the term with the given key, or sql.ErrNoRows.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	return r.findOne(ctx, termSelect+" WHERE id = $1", id)
}

// FindByIndex returns the term at an offset from the active term, or sql.ErrNoRows.
func (r *TermRepository) FindByIndex(ctx context.Context, index int) (*models.Term, error) {
	return r.findOne(ctx, termSelect+" WHERE active_index = $1", index)
}

func (r *TermRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Term, error) {
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find term %v: %w", arg, err)
	}
	return &term, nil
}
