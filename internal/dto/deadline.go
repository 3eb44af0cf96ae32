package dto

import (
	"time"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// MilestoneQuery selects one course of a student's pace. TermID defaults to the active term.
type MilestoneQuery struct {
	TermID string
	Track  string
	Pace   int
	Index  int
}

// ExtensionRequest addresses one deadline for an extension lookup or grant. Objective is only
// used for standards-based courses and MsType only for review/final exam courses.
type ExtensionRequest struct {
	TermID    string               `json:"term_id"`
	Kind      models.ExtensionKind `json:"kind" binding:"required,oneof=accommodation free"`
	Track     string               `json:"track" binding:"required"`
	Pace      int                  `json:"pace" binding:"required"`
	Index     int                  `json:"index" binding:"required"`
	Unit      int                  `json:"unit" binding:"required"`
	Objective int                  `json:"objective"`
	MsType    models.MilestoneType `json:"ms_type"`
}

// ExtensionResponse reports an extension result both raw and decoded.
type ExtensionResponse struct {
	StudentID string                  `json:"student_id"`
	Kind      models.ExtensionKind    `json:"kind"`
	Outcome   models.ExtensionOutcome `json:"outcome"`
}

// PaceResponse describes a student's pace classification.
type PaceResponse struct {
	models.PaceSummary
	Courses []string `json:"courses"`
}

// RecomputeResponse acknowledges a queued recompute.
type RecomputeResponse struct {
	JobID     string `json:"job_id"`
	StudentID string `json:"student_id"`
	TermID    string `json:"term_id"`
}

// OpenDaysResponse lists the open days of the active term.
type OpenDaysResponse struct {
	TermID         string     `json:"term_id"`
	FirstClassDate *time.Time `json:"first_class_date,omitempty"`
	LastClassDate  *time.Time `json:"last_class_date,omitempty"`
	Dates          []string   `json:"dates"`
}

// NextOpenDayResponse answers a next-open-day lookup. Date is empty when it falls past the end of term.
type NextOpenDayResponse struct {
	From  string `json:"from"`
	Count int    `json:"count"`
	Date  string `json:"date,omitempty"`
}
