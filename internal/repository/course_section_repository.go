package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// CourseSectionRepository reads course section and pacing structure settings.
type CourseSectionRepository struct {
	db *sqlx.DB
}

// NewCourseSectionRepository constructs the repository.
func NewCourseSectionRepository(db *sqlx.DB) *CourseSectionRepository {
	return &CourseSectionRepository{db: db}
}

// FindSection returns the section record of a course offering.
func (r *CourseSectionRepository) FindSection(ctx context.Context, termID, courseID, section string) (*models.CourseSection, error) {
	const query = `SELECT course, sect, term_id, pacing_structure, COALESCE(grading_std, '') AS grading_std
        FROM course_sections WHERE term_id = $1 AND course = $2 AND sect = $3`
	var cs models.CourseSection
	if err := r.db.GetContext(ctx, &cs, query, termID, courseID, section); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course section: %w", err)
	}
	return &cs, nil
}

// FindPacingStructure returns the rule set of a pacing structure in a term.
func (r *CourseSectionRepository) FindPacingStructure(ctx context.Context, termID, id string) (*models.PacingStructure, error) {
	const query = `SELECT pacing_structure, term_id, free_extension_days FROM pacing_structures WHERE term_id = $1 AND pacing_structure = $2`
	var ps models.PacingStructure
	if err := r.db.GetContext(ctx, &ps, query, termID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pacing structure: %w", err)
	}
	return &ps, nil
}
