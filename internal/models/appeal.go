package models

import (
	"fmt"
	"time"

	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// AppealType classifies why a deadline was moved.
type AppealType string

// Appeal types.
const (
	AppealAccommodation     AppealType = "ACC"
	AppealUniversityExcused AppealType = "EXC"
	AppealFinancial         AppealType = "FIN"
	AppealMedical           AppealType = "MED"
	AppealFamily            AppealType = "FAM"
	AppealRequested         AppealType = "REQ"
	AppealAutomatic         AppealType = "AUT"
	AppealOther             AppealType = "OTH"
)

// ParseAppealType converts a stored code into an AppealType.
func ParseAppealType(code string) (AppealType, error) {
	switch t := AppealType(code); t {
	case AppealAccommodation, AppealUniversityExcused, AppealFinancial, AppealMedical,
		AppealFamily, AppealRequested, AppealAutomatic, AppealOther:
		return t, nil
	}
	return "", appErrors.Clone(appErrors.ErrInvalidArgument, fmt.Sprintf("unknown appeal type %q", code))
}

// MilestoneAppeal is an append-only record of a deadline change granted to a student.
type MilestoneAppeal struct {
	ID              string        `db:"id" json:"id"`
	TermID          string        `db:"term_id" json:"term_id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	AppealDateTime  time.Time     `db:"appeal_date_time" json:"appeal_date_time"`
	AppealType      AppealType    `db:"appeal_type" json:"appeal_type"`
	Pace            int           `db:"pace" json:"pace"`
	PaceTrack       string        `db:"pace_track" json:"pace_track"`
	Number          int           `db:"ms_nbr" json:"ms_nbr"`
	Type            MilestoneType `db:"ms_type" json:"ms_type"`
	PriorDeadline   *time.Time    `db:"prior_ms_dt" json:"prior_ms_dt,omitempty"`
	NewDeadline     *time.Time    `db:"new_ms_dt" json:"new_ms_dt,omitempty"`
	AttemptsAllowed *int          `db:"nbr_atmpts_allow" json:"nbr_atmpts_allow,omitempty"`
	Circumstances   string        `db:"circumstances" json:"circumstances"`
	Comment         string        `db:"comment" json:"comment"`
	Interviewer     string        `db:"interviewer" json:"interviewer"`
}

// PaceAppeal is the older per-milestone appeal record kept for history.
type PaceAppeal struct {
	TermID          string        `db:"term_id" json:"term_id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	AppealDate      time.Time     `db:"appeal_dt" json:"appeal_dt"`
	Pace            int           `db:"pace" json:"pace"`
	PaceTrack       string        `db:"pace_track" json:"pace_track"`
	Number          int           `db:"ms_nbr" json:"ms_nbr"`
	Type            MilestoneType `db:"ms_type" json:"ms_type"`
	Deadline        *time.Time    `db:"ms_date" json:"ms_date,omitempty"`
	NewDeadline     *time.Time    `db:"new_deadline_dt" json:"new_deadline_dt,omitempty"`
	AttemptsAllowed *int          `db:"nbr_atmpts_allow" json:"nbr_atmpts_allow,omitempty"`
	Circumstances   string        `db:"circumstances" json:"circumstances"`
	Comment         string        `db:"comment" json:"comment"`
	Interviewer     string        `db:"interviewer" json:"interviewer"`
}

// ExtensionKind selects which allowance an extension draws on.
type ExtensionKind string

// Extension kinds.
const (
	ExtensionAccommodation ExtensionKind = "accommodation"
	ExtensionFree          ExtensionKind = "free"
)

// AppealType returns the appeal type recorded when this kind of extension is granted.
func (k ExtensionKind) AppealType() AppealType {
	if k == ExtensionAccommodation {
		return AppealAccommodation
	}
	return AppealRequested
}

// ConsumedBy reports whether a prior appeal of type t uses up this kind of extension.
func (k ExtensionKind) ConsumedBy(t AppealType) bool {
	if k == ExtensionAccommodation {
		return t == AppealAccommodation
	}
	return t == AppealRequested || t == AppealAutomatic
}

// ExtensionOutcome splits the integer result of an extension request.
type ExtensionOutcome struct {
	Code      int  `json:"code"`
	Requested int  `json:"requested_days"`
	Granted   int  `json:"granted_days"`
	Eligible  bool `json:"eligible"`
	Partial   bool `json:"partial"`
}

// PartialGrantFactor scales the requested day count in a partial-grant result.
const PartialGrantFactor = 100

// DecodeExtensionOutcome interprets -1 (not offered), 0 (already used), N (granted) and 100*N+k (partial).
func DecodeExtensionOutcome(code int) ExtensionOutcome {
	switch {
	case code <= 0:
		return ExtensionOutcome{Code: code}
	case code >= PartialGrantFactor:
		return ExtensionOutcome{
			Code:      code,
			Requested: code / PartialGrantFactor,
			Granted:   code % PartialGrantFactor,
			Eligible:  true,
			Partial:   true,
		}
	}
	return ExtensionOutcome{Code: code, Requested: code, Granted: code, Eligible: true}
}
