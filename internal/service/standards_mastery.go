package service

import (
	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

// Mastery thresholds: a course passes with at least this many standards mastered in each half.
const (
	masteryStandardsPerHalf = 10
	masteryFirstHalfUnits   = 4
)

// StandardsMastery answers mastery questions about one student in one standards-based course.
type StandardsMastery struct {
	exams     []models.MasteryExam
	homeworks []models.StudentHomework
	mastered  map[string]bool
	answers   map[string][]models.MasteryAttemptAnswer
}

// NewStandardsMastery indexes a student's mastery attempts and answers by exam.
func NewStandardsMastery(exams []models.MasteryExam, attempts []models.MasteryAttempt, answers []models.MasteryAttemptAnswer, homeworks []models.StudentHomework) *StandardsMastery {
	m := &StandardsMastery{
		exams:     exams,
		homeworks: homeworks,
		mastered:  make(map[string]bool, len(exams)),
		answers:   make(map[string][]models.MasteryAttemptAnswer, len(exams)),
	}
	for _, a := range attempts {
		if a.Passed {
			m.mastered[a.ExamID] = true
		}
	}
	for _, qa := range answers {
		m.answers[qa.ExamID] = append(m.answers[qa.ExamID], qa)
	}
	return m
}

// IsMastered reports whether any attempt on the exam passed.
func (m *StandardsMastery) IsMastered(examID string) bool {
	return m.mastered[examID]
}

// EnoughToPass reports whether both halves of the course have enough mastered standards.
func (m *StandardsMastery) EnoughToPass() bool {
	first, second := 0, 0
	for _, exam := range m.exams {
		if !m.mastered[exam.ExamID] {
			continue
		}
		if exam.Unit <= masteryFirstHalfUnits {
			first++
		} else {
			second++
		}
	}
	return first >= masteryStandardsPerHalf && second >= masteryStandardsPerHalf
}

// CountTotal returns the number of standards in the course.
func (m *StandardsMastery) CountTotal() int {
	return len(m.exams)
}

// CountComplete returns the number of mastered standards.
func (m *StandardsMastery) CountComplete() int {
	n := 0
	for _, exam := range m.exams {
		if m.mastered[exam.ExamID] {
			n++
		}
	}
	return n
}

// EligibleStandards lists standards whose assignment is passed but which are not yet mastered.
func (m *StandardsMastery) EligibleStandards() []models.MasteryExam {
	var eligible []models.MasteryExam
	for _, exam := range m.exams {
		if m.hasPassedAssignment(exam.Unit, exam.Objective) && !m.mastered[exam.ExamID] {
			eligible = append(eligible, exam)
		}
	}
	return eligible
}

// CountAvailable returns len(EligibleStandards()).
func (m *StandardsMastery) CountAvailable() int {
	return len(m.EligibleStandards())
}

// QuestionsPassedTwice returns a bitmask: bit 0 when question 1 has been answered correctly at least
// twice, bit 1 likewise for question 2.
func (m *StandardsMastery) QuestionsPassedTwice(examID string) int {
	var correct [3]int
	for _, qa := range m.answers[examID] {
		if qa.Correct && (qa.QuestionNumber == 1 || qa.QuestionNumber == 2) {
			correct[qa.QuestionNumber]++
		}
	}
	result := 0
	if correct[1] >= 2 {
		result |= 0x01
	}
	if correct[2] >= 2 {
		result |= 0x02
	}
	return result
}

// Summary condenses the counts for API responses.
func (m *StandardsMastery) Summary() *models.MasterySummary {
	return &models.MasterySummary{
		TotalStandards:     m.CountTotal(),
		MasteredStandards:  m.CountComplete(),
		AvailableStandards: m.CountAvailable(),
		EnoughToPass:       m.EnoughToPass(),
	}
}

func (m *StandardsMastery) hasPassedAssignment(unit, objective int) bool {
	for _, hw := range m.homeworks {
		if hw.Unit == unit && hw.Objective == objective && hw.Passed &&
			(hw.HomeworkType == models.HomeworkTypeStandard || hw.HomeworkType == models.HomeworkTypeLegacy) {
			return true
		}
	}
	return false
}
