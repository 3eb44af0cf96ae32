package models

// Completion thresholds and grade bands of a review/final exam course.
const (
	CompletionScore   = 54
	GradeAScore       = 65
	GradeBScore       = 62
	OnTimeReviewBonus = 3
)

// LegacyCourseStatus summarises progress in a review/final exam course.
type LegacyCourseStatus struct {
	Deadlines        ResolvedLegacyMilestones `json:"deadlines"`
	ReviewOnTime     [4]bool                  `json:"review_on_time"`
	BestPassingUnit  [4]int                   `json:"best_passing_unit"`
	BestPassingFinal int                      `json:"best_passing_final"`
	BestFailedUnit   [4]int                   `json:"best_failed_unit"`
	BestFailedFinal  int                      `json:"best_failed_final"`
	UnitAttempts     [4]int                   `json:"unit_attempts"`
	FinalAttempts    int                      `json:"final_attempts"`
	TotalScore       int                      `json:"total_score"`
}

// MasterySummary summarises progress in a standards-based course.
type MasterySummary struct {
	TotalStandards     int  `json:"total_standards"`
	MasteredStandards  int  `json:"mastered_standards"`
	AvailableStandards int  `json:"available_standards"`
	EnoughToPass       bool `json:"enough_to_pass"`
}

// CourseStatus is the computed status of one registration.
type CourseStatus struct {
	Registration Registration        `json:"registration"`
	Section      *CourseSection      `json:"section,omitempty"`
	Legacy       *LegacyCourseStatus `json:"legacy,omitempty"`
	Mastery      *MasterySummary     `json:"mastery,omitempty"`
}

// CourseGrade maps a completed total score to a letter grade.
func CourseGrade(totalScore int) string {
	switch {
	case totalScore >= GradeAScore:
		return "A"
	case totalScore >= GradeBScore:
		return "B"
	}
	return "C"
}
