package models

import "time"

// Student holds the per-student settings the deadline engine consults.
type Student struct {
	ID              string    `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	PacingStructure *string   `db:"pacing_structure" json:"pacing_structure,omitempty"`
	ExtensionDays   *int      `db:"extension_days" json:"extension_days,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StudentTerm records the pace, pace track and first course computed for a student in a term.
type StudentTerm struct {
	TermID      string    `db:"term_id" json:"term_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Pace        int       `db:"pace" json:"pace"`
	PaceTrack   string    `db:"pace_track" json:"pace_track"`
	FirstCourse string    `db:"first_course" json:"first_course"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
