package models

import "time"

// CalendarHoliday marks a campus calendar day on which no instruction or testing takes place.
const CalendarHoliday = "holiday"

// CampusCalendarDay is a dated entry on the campus calendar.
type CampusCalendarDay struct {
	Date        time.Time `db:"campus_dt" json:"campus_dt"`
	Description string    `db:"dt_desc" json:"dt_desc"`
}

// OpenDays lists the open calendar days of a term in ascending order.
type OpenDays struct {
	TermID string      `json:"term_id"`
	Dates  []time.Time `json:"dates"`
}
