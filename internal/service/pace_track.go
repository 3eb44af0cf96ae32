package service

import (
	"sort"
	"strings"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// Pace tracks.
const (
	PaceTrackA = "A"
	PaceTrackB = "B"
	PaceTrackC = "C"
)

var applicableCourses = map[string]bool{
	"M 117": true, "M 118": true, "M 124": true, "M 125": true, "M 126": true,
	"MATH 117": true, "MATH 118": true, "MATH 124": true, "MATH 125": true, "MATH 126": true,
}

// IsApplicableCourse reports whether a course participates in paced scheduling.
func IsApplicableCourse(courseID string) bool {
	return applicableCourses[courseID]
}

// IsCountedTowardPace reports whether a registration adds to the student's pace.
func IsCountedTowardPace(reg models.Registration) bool {
	if reg.Synthetic || reg.InstructionType == models.InstructionTypeChallenge {
		return false
	}
	return !reg.IsDroppedOrForfeit() && !reg.IsNonCountedIncomplete()
}

// DeterminePace counts the applicable registrations that count toward pace.
func DeterminePace(regs []models.Registration) int {
	pace := 0
	for _, reg := range regs {
		if IsApplicableCourse(reg.CourseID) && IsCountedTowardPace(reg) {
			pace++
		}
	}
	return pace
}

// DeterminePaceTrack derives the pace track from the lowest section the student is in.
// Regular registrations are considered first, then counted incompletes, then non-counted incompletes.
func DeterminePaceTrack(regs []models.Registration, pace int) string {
	passes := []func(models.Registration) bool{
		func(r models.Registration) bool { return !r.InProgress && !r.IsDroppedOrForfeit() },
		func(r models.Registration) bool { return r.InProgress && r.Counted },
		func(r models.Registration) bool { return r.IsNonCountedIncomplete() && !r.IsDroppedOrForfeit() },
	}

	var sections []string
	for _, include := range passes {
		for _, reg := range regs {
			if reg.Synthetic || reg.InstructionType == models.InstructionTypeChallenge || !IsApplicableCourse(reg.CourseID) {
				continue
			}
			if include(reg) {
				sections = append(sections, reg.Section)
			}
		}
		if len(sections) > 0 {
			break
		}
	}
	if len(sections) == 0 {
		return PaceTrackA
	}
	sort.Strings(sections)

	switch sections[0] {
	case "001", "801", "809":
		switch pace {
		case 1:
			if hasCountedCourse(regs, "118", "125", "126") {
				return PaceTrackB
			}
		case 2:
			if !hasCountedCourse(regs, "117") {
				return PaceTrackB
			}
		}
	case "002":
		return PaceTrackC
	}
	return PaceTrackA
}

func hasCountedCourse(regs []models.Registration, numbers ...string) bool {
	for _, reg := range regs {
		if !IsCountedTowardPace(reg) {
			continue
		}
		for _, n := range numbers {
			if reg.CourseID == "M "+n || reg.CourseID == "MATH "+n {
				return true
			}
		}
	}
	return false
}

// DetermineFirstCourse picks the course a student works on first. It returns "" when no
// registration qualifies.
func DetermineFirstCourse(regs []models.Registration) string {
	var open, notOpen []models.Registration
	for _, reg := range regs {
		if !IsApplicableCourse(reg.CourseID) || !IsCountedTowardPace(reg) {
			continue
		}
		if reg.IsOpen() {
			open = append(open, reg)
		} else {
			notOpen = append(notOpen, reg)
		}
	}

	first := ""
	if len(open) == 0 {
		for _, reg := range notOpen {
			if reg.PrereqSatisfied != models.PrereqSatisfied && reg.PrereqSatisfied != models.PrereqSatisfiedPending {
				continue
			}
			if first == "" || reg.CourseID < first {
				first = reg.CourseID
			}
		}
		if first == "" {
			first = lowestCourseNumber(notOpen)
		}
	} else {
		first = firstOpenCourse(open)
	}

	if first == "" {
		for _, reg := range regs {
			if reg.IsNonCountedIncomplete() {
				first = reg.CourseID
			}
		}
	}
	return first
}

func firstOpenCourse(open []models.Registration) string {
	for _, reg := range open {
		if reg.PaceOrder != nil && *reg.PaceOrder == 1 {
			return reg.CourseID
		}
	}
	if len(open) == 1 {
		return open[0].CourseID
	}
	first := ""
	lowest := 0
	for _, reg := range open {
		if reg.PaceOrder != nil && (first == "" || *reg.PaceOrder < lowest) {
			first = reg.CourseID
			lowest = *reg.PaceOrder
		}
	}
	if first == "" {
		first = lowestCourseNumber(open)
	}
	return first
}

func lowestCourseNumber(regs []models.Registration) string {
	lowest, lowestNumber := "", ""
	for _, reg := range regs {
		number := strings.TrimPrefix(strings.TrimPrefix(reg.CourseID, "MATH "), "M ")
		if lowest == "" || number < lowestNumber {
			lowest, lowestNumber = reg.CourseID, number
		}
	}
	return lowest
}

// PacedRegistrations returns the applicable, counted registrations ordered by pace order then
// course number. A course's position in this list is its index within the student's pace.
func PacedRegistrations(regs []models.Registration) []models.Registration {
	var paced []models.Registration
	for _, reg := range regs {
		if IsApplicableCourse(reg.CourseID) && IsCountedTowardPace(reg) {
			paced = append(paced, reg)
		}
	}
	sort.SliceStable(paced, func(i, j int) bool {
		a, b := paced[i].PaceOrder, paced[j].PaceOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return paced[i].CourseID < paced[j].CourseID
	})
	return paced
}
