package models

// Registration open statuses.
const (
	OpenStatusOpen    = "Y"
	OpenStatusNotOpen = "N"
	OpenStatusDropped = "D"
	OpenStatusForfeit = "G"
)

// InstructionTypeChallenge marks credit earned by challenge exam rather than coursework.
const InstructionTypeChallenge = "OT"

// Prerequisite satisfaction flags.
const (
	PrereqSatisfied        = "Y"
	PrereqNotSatisfied     = "N"
	PrereqSatisfiedPending = "P"
)

// Registration is a student's registration in one course section for a term.
type Registration struct {
	StudentID       string  `db:"student_id" json:"student_id"`
	CourseID        string  `db:"course" json:"course"`
	Section         string  `db:"sect" json:"sect"`
	TermID          string  `db:"term_id" json:"term_id"`
	OpenStatus      string  `db:"open_status" json:"open_status"`
	InProgress      bool    `db:"i_in_progress" json:"i_in_progress"`
	Counted         bool    `db:"i_counted" json:"i_counted"`
	PaceOrder       *int    `db:"pace_order" json:"pace_order,omitempty"`
	InstructionType string  `db:"instrn_type" json:"instrn_type"`
	Synthetic       bool    `db:"synthetic" json:"synthetic"`
	PrereqSatisfied string  `db:"prereq_satis" json:"prereq_satis"`
	Completed       bool    `db:"completed" json:"completed"`
	Score           *int    `db:"score" json:"score,omitempty"`
	CourseGrade     *string `db:"course_grade" json:"course_grade,omitempty"`
}

// IsOpen reports whether the registration has been opened for work.
func (r Registration) IsOpen() bool {
	return r.OpenStatus == OpenStatusOpen
}

// IsDroppedOrForfeit reports whether the registration was dropped or forfeited.
func (r Registration) IsDroppedOrForfeit() bool {
	return r.OpenStatus == OpenStatusDropped || r.OpenStatus == OpenStatusForfeit
}

// IsNonCountedIncomplete reports whether this is an incomplete carried over without counting toward pace.
func (r Registration) IsNonCountedIncomplete() bool {
	return r.InProgress && !r.Counted
}

// CourseSection carries the section-level settings of a course offering.
type CourseSection struct {
	CourseID        string  `db:"course" json:"course"`
	Section         string  `db:"sect" json:"sect"`
	TermID          string  `db:"term_id" json:"term_id"`
	PacingStructure *string `db:"pacing_structure" json:"pacing_structure,omitempty"`
	GradingStandard string  `db:"grading_std" json:"grading_std"`
}

// GradingStandardMastery marks a standards-based (mastery) section.
const GradingStandardMastery = "MAS"

// PacingStructure rules referenced by course sections.
type PacingStructure struct {
	ID                string `db:"pacing_structure" json:"pacing_structure"`
	TermID            string `db:"term_id" json:"term_id"`
	FreeExtensionDays *int   `db:"free_extension_days" json:"free_extension_days,omitempty"`
}

// PaceSummary describes the pace classification of a student's registrations.
type PaceSummary struct {
	StudentID       string   `json:"student_id"`
	TermID          string   `json:"term_id"`
	Pace            int      `json:"pace"`
	PaceTrack       string   `json:"pace_track"`
	FirstCourse     string   `json:"first_course,omitempty"`
	PacingStructure string   `json:"pacing_structure,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}
