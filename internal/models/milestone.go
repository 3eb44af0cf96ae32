package models

import (
	"fmt"
	"time"

	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// MilestoneType identifies what a milestone deadline governs.
type MilestoneType string

// Milestone types.
const (
	MilestoneReviewExam MilestoneType = "RE"
	MilestoneFinalExam  MilestoneType = "FE"
	MilestoneFinalRetry MilestoneType = "F1"
	MilestoneMastery    MilestoneType = "MA"
)

// ParseMilestoneType converts a stored code into a MilestoneType.
func ParseMilestoneType(code string) (MilestoneType, error) {
	switch t := MilestoneType(code); t {
	case MilestoneReviewExam, MilestoneFinalExam, MilestoneFinalRetry, MilestoneMastery:
		return t, nil
	}
	return "", appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("unknown milestone type %q", code))
}

// IsLegacy reports whether the type belongs to the review/final exam course model.
func (t MilestoneType) IsLegacy() bool {
	return t == MilestoneReviewExam || t == MilestoneFinalExam || t == MilestoneFinalRetry
}

// Ranges of the composite milestone key parts.
const (
	MaxPace            = 5
	LegacyUnits        = 5
	StandardUnits      = 8
	StandardObjectives = 3

	// StandardNumberFloor is the smallest standards-based milestone number; smaller numbers are legacy.
	StandardNumberFloor = 1000
)

// IsStandardMilestoneNumber reports whether a stored milestone number uses the standards-based encoding.
func IsStandardMilestoneNumber(number int) bool {
	return number >= StandardNumberFloor
}

// LegacyMilestoneKey addresses a review or final exam milestone: pace, course index within the pace and unit.
type LegacyMilestoneKey struct {
	Pace  int `json:"pace"`
	Index int `json:"index"`
	Unit  int `json:"unit"`
}

// NewLegacyMilestoneKey validates the key parts.
func NewLegacyMilestoneKey(pace, index, unit int) (LegacyMilestoneKey, error) {
	if err := validatePaceIndex(pace, index); err != nil {
		return LegacyMilestoneKey{}, err
	}
	if unit < 1 || unit > LegacyUnits {
		return LegacyMilestoneKey{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid unit value (%d)", unit))
	}
	return LegacyMilestoneKey{Pace: pace, Index: index, Unit: unit}, nil
}

// Number encodes the key as pace*100 + index*10 + unit.
func (k LegacyMilestoneKey) Number() int {
	return k.Pace*100 + k.Index*10 + k.Unit
}

// DecodeLegacyMilestoneKey reverses Number.
func DecodeLegacyMilestoneKey(number int) (LegacyMilestoneKey, error) {
	if number <= 0 || IsStandardMilestoneNumber(number) {
		return LegacyMilestoneKey{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("%d is not a legacy milestone number", number))
	}
	return NewLegacyMilestoneKey(number/100, (number/10)%10, number%10)
}

// StandardMilestoneKey addresses a mastery milestone: pace, course index, unit and objective.
type StandardMilestoneKey struct {
	Pace      int `json:"pace"`
	Index     int `json:"index"`
	Unit      int `json:"unit"`
	Objective int `json:"objective"`
}

// NewStandardMilestoneKey validates the key parts.
func NewStandardMilestoneKey(pace, index, unit, objective int) (StandardMilestoneKey, error) {
	if err := validatePaceIndex(pace, index); err != nil {
		return StandardMilestoneKey{}, err
	}
	if unit < 1 || unit > StandardUnits {
		return StandardMilestoneKey{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid unit value (%d)", unit))
	}
	if objective < 1 || objective > StandardObjectives {
		return StandardMilestoneKey{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid objective value (%d)", objective))
	}
	return StandardMilestoneKey{Pace: pace, Index: index, Unit: unit, Objective: objective}, nil
}

// Number encodes the key as pace*1000 + index*100 + unit*10 + objective.
func (k StandardMilestoneKey) Number() int {
	return k.Pace*1000 + k.Index*100 + k.Unit*10 + k.Objective
}

// DecodeStandardMilestoneKey reverses Number.
func DecodeStandardMilestoneKey(number int) (StandardMilestoneKey, error) {
	if !IsStandardMilestoneNumber(number) {
		return StandardMilestoneKey{}, appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("%d is not a standards milestone number", number))
	}
	return NewStandardMilestoneKey(number/1000, (number/100)%10, (number/10)%10, number%10)
}

// MilestoneIndex extracts the course index from either encoding.
func MilestoneIndex(number int) int {
	if IsStandardMilestoneNumber(number) {
		return (number / 100) % 10
	}
	return (number / 10) % 10
}

func validatePaceIndex(pace, index int) error {
	if pace < 1 || pace > MaxPace {
		return appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid pace value (%d)", pace))
	}
	if index < 1 || index > pace {
		return appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid course index value for pace %d (%d)", pace, index))
	}
	return nil
}

// Milestone is a base deadline shared by every student on a pace track.
type Milestone struct {
	TermID          string        `db:"term_id" json:"term_id"`
	Pace            int           `db:"pace" json:"pace"`
	PaceTrack       string        `db:"pace_track" json:"pace_track"`
	Number          int           `db:"ms_nbr" json:"ms_nbr"`
	Type            MilestoneType `db:"ms_type" json:"ms_type"`
	Date            time.Time     `db:"ms_date" json:"ms_date"`
	AttemptsAllowed *int          `db:"nbr_atmpts_allow" json:"nbr_atmpts_allow,omitempty"`
}

// StudentMilestone overrides a base milestone for a single student.
type StudentMilestone struct {
	ID              string        `db:"id" json:"id"`
	TermID          string        `db:"term_id" json:"term_id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	PaceTrack       string        `db:"pace_track" json:"pace_track"`
	Number          int           `db:"ms_nbr" json:"ms_nbr"`
	Type            MilestoneType `db:"ms_type" json:"ms_type"`
	Date            time.Time     `db:"ms_date" json:"ms_date"`
	AttemptsAllowed *int          `db:"nbr_atmpts_allow" json:"nbr_atmpts_allow,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// ResolvedLegacyMilestones is the effective deadline set of one course in the review/final exam model.
type ResolvedLegacyMilestones struct {
	RE1        time.Time `json:"re1"`
	RE2        time.Time `json:"re2"`
	RE3        time.Time `json:"re3"`
	RE4        time.Time `json:"re4"`
	FE         time.Time `json:"fe"`
	F1         time.Time `json:"f1"`
	F1Attempts *int      `json:"f1_attempts,omitempty"`
}

// ReviewDeadline returns the review exam deadline of units 1 through 4.
func (r ResolvedLegacyMilestones) ReviewDeadline(unit int) (time.Time, bool) {
	switch unit {
	case 1:
		return r.RE1, true
	case 2:
		return r.RE2, true
	case 3:
		return r.RE3, true
	case 4:
		return r.RE4, true
	}
	return time.Time{}, false
}

// Deadline returns the deadline for a unit and milestone type, if that combination exists.
func (r ResolvedLegacyMilestones) Deadline(unit int, msType MilestoneType) (time.Time, bool) {
	switch msType {
	case MilestoneReviewExam:
		return r.ReviewDeadline(unit)
	case MilestoneFinalExam:
		if unit == LegacyUnits {
			return r.FE, true
		}
	case MilestoneFinalRetry:
		if unit == LegacyUnits {
			return r.F1, true
		}
	}
	return time.Time{}, false
}

// ResolvedStandardMilestones is the effective mastery deadline grid of one course, unit-major.
type ResolvedStandardMilestones struct {
	Dates [StandardUnits][StandardObjectives]time.Time `json:"dates"`
}

// Deadline returns the mastery deadline for a 1-based unit and objective.
func (r ResolvedStandardMilestones) Deadline(unit, objective int) (time.Time, bool) {
	if unit < 1 || unit > StandardUnits || objective < 1 || objective > StandardObjectives {
		return time.Time{}, false
	}
	return r.Dates[unit-1][objective-1], true
}
