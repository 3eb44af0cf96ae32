package models

import "time"

// Term is an academic term keyed by season and two-digit year, e.g. "SP24".
// ActiveIndex is 0 for the current term, negative for past terms and positive for future ones.
type Term struct {
	ID                 string     `db:"id" json:"id"`
	StartDate          time.Time  `db:"start_date" json:"start_date"`
	EndDate            time.Time  `db:"end_date" json:"end_date"`
	AcademicYear       string     `db:"academic_year" json:"academic_year"`
	ActiveIndex        int        `db:"active_index" json:"active_index"`
	DropDeadline       *time.Time `db:"drop_deadline" json:"drop_deadline,omitempty"`
	WithdrawDeadline   *time.Time `db:"withdraw_deadline" json:"withdraw_deadline,omitempty"`
	IncompleteDeadline *time.Time `db:"incomplete_deadline" json:"incomplete_deadline,omitempty"`
}

// IsActive reports whether the term is the current one.
func (t Term) IsActive() bool {
	return t.ActiveIndex == 0
}

// TermWeek is one numbered week of a term. Week 0 precedes classes and the last week is finals week.
type TermWeek struct {
	TermID     string    `db:"term_id" json:"term_id"`
	WeekNumber int       `db:"week_nbr" json:"week_nbr"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
}

// TermScope selects terms relative to the active one.
type TermScope string

// Term scopes.
const (
	TermScopePast   TermScope = "past"
	TermScopeActive TermScope = "active"
	TermScopeFuture TermScope = "future"
)

// TermFilter narrows term listings.
type TermFilter struct {
	Scope        TermScope
	AcademicYear string
}
