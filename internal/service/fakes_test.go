package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

type fakeStudents struct {
	rows        map[string]models.Student
	updated     map[string]string
	findCalls   int
	updateError error
}

func (f *fakeStudents) FindByID(_ context.Context, id string) (*models.Student, error) {
	f.findCalls++
	s, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStudents) UpdatePacingStructure(_ context.Context, id, ps string) error {
	if f.updateError != nil {
		return f.updateError
	}
	if f.updated == nil {
		f.updated = map[string]string{}
	}
	f.updated[id] = ps
	s := f.rows[id]
	s.PacingStructure = strPtr(ps)
	f.rows[id] = s
	return nil
}

type fakeRegistrations struct {
	rows      []models.Registration
	listCalls int
	completed []models.Registration
}

func (f *fakeRegistrations) ListByStudentTerm(_ context.Context, studentID, termID string) ([]models.Registration, error) {
	f.listCalls++
	var out []models.Registration
	for _, r := range f.rows {
		if r.StudentID == studentID && r.TermID == termID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrations) UpdateCompletion(_ context.Context, reg *models.Registration) error {
	f.completed = append(f.completed, *reg)
	for i := range f.rows {
		if f.rows[i].StudentID == reg.StudentID && f.rows[i].CourseID == reg.CourseID && f.rows[i].TermID == reg.TermID {
			f.rows[i] = *reg
		}
	}
	return nil
}

type fakeOverrides struct {
	mu        sync.Mutex
	rows      []models.StudentMilestone
	listCalls int
	createErr error
	updates   int
}

func (f *fakeOverrides) ListByStudent(_ context.Context, termID, track, studentID string) ([]models.StudentMilestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []models.StudentMilestone
	for _, r := range f.rows {
		if r.TermID == termID && r.PaceTrack == track && r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOverrides) Create(_ context.Context, ms *models.StudentMilestone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	ms.ID = fmt.Sprintf("sm-%d", len(f.rows)+1)
	f.rows = append(f.rows, *ms)
	return nil
}

func (f *fakeOverrides) UpdateDate(_ context.Context, id string, date time.Time, attempts *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Date = date
			if attempts != nil {
				f.rows[i].AttemptsAllowed = attempts
			}
			f.updates++
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeAppeals struct {
	rows      []models.MilestoneAppeal
	listCalls int
}

func (f *fakeAppeals) ListByStudent(_ context.Context, termID, studentID string) ([]models.MilestoneAppeal, error) {
	f.listCalls++
	var out []models.MilestoneAppeal
	for _, a := range f.rows {
		if a.TermID == termID && a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppeals) Create(_ context.Context, appeal *models.MilestoneAppeal) error {
	appeal.ID = fmt.Sprintf("ap-%d", len(f.rows)+1)
	f.rows = append(f.rows, *appeal)
	return nil
}

type fakePaceAppeals struct {
	rows []models.PaceAppeal
}

func (f *fakePaceAppeals) ListByStudent(_ context.Context, termID, studentID string) ([]models.PaceAppeal, error) {
	var out []models.PaceAppeal
	for _, a := range f.rows {
		if a.TermID == termID && a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeDefinitions struct {
	rows  []models.Milestone
	calls int
	err   error
}

func (f *fakeDefinitions) ListByTermPaceTrack(_ context.Context, termID string, pace int, track string) ([]models.Milestone, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Milestone
	for _, m := range f.rows {
		if m.TermID == termID && m.Pace == pace && m.PaceTrack == track {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeSections struct {
	sections   map[string]models.CourseSection
	structures map[string]models.PacingStructure
}

func (f *fakeSections) FindSection(_ context.Context, _ string, courseID, section string) (*models.CourseSection, error) {
	s, ok := f.sections[courseID+"/"+section]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSections) FindPacingStructure(_ context.Context, _ string, id string) (*models.PacingStructure, error) {
	ps, ok := f.structures[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ps, nil
}

type fakeStudentTerms struct {
	rows    map[string]models.StudentTerm
	created int
	updated int
	deleted int
}

func (f *fakeStudentTerms) key(termID, studentID string) string { return termID + "/" + studentID }

func (f *fakeStudentTerms) Find(_ context.Context, termID, studentID string) (*models.StudentTerm, error) {
	rec, ok := f.rows[f.key(termID, studentID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &rec, nil
}

func (f *fakeStudentTerms) Create(_ context.Context, rec *models.StudentTerm) error {
	if f.rows == nil {
		f.rows = map[string]models.StudentTerm{}
	}
	f.created++
	f.rows[f.key(rec.TermID, rec.StudentID)] = *rec
	return nil
}

func (f *fakeStudentTerms) UpdatePaceTrackFirstCourse(_ context.Context, rec *models.StudentTerm) error {
	if _, ok := f.rows[f.key(rec.TermID, rec.StudentID)]; !ok {
		return sql.ErrNoRows
	}
	f.updated++
	f.rows[f.key(rec.TermID, rec.StudentID)] = *rec
	return nil
}

func (f *fakeStudentTerms) Delete(_ context.Context, termID, studentID string) error {
	f.deleted++
	delete(f.rows, f.key(termID, studentID))
	return nil
}

// fakeOpenDays answers NextOpenDayInTerm from a fixed list of open dates.
// With err set, calls after the first okCalls fail.
type fakeOpenDays struct {
	open    []time.Time
	err     error
	okCalls int
	calls   int
	terms   []string
}

func (f *fakeOpenDays) NextOpenDayInTerm(_ context.Context, termID string, date time.Time, count int) (*time.Time, error) {
	f.calls++
	f.terms = append(f.terms, termID)
	if f.err != nil && f.calls > f.okCalls {
		return nil, f.err
	}
	return NextOpenDay(f.open, date, count), nil
}

type fakeExams struct {
	exams     []models.StudentExam
	homeworks []models.StudentHomework
	mastery   []models.MasteryExam
	attempts  []models.MasteryAttempt
	answers   []models.MasteryAttemptAnswer
}

func (f *fakeExams) ListStudentExams(_ context.Context, studentID, courseID string, examTypes ...string) ([]models.StudentExam, error) {
	var out []models.StudentExam
	for _, e := range f.exams {
		if e.StudentID != studentID || e.CourseID != courseID {
			continue
		}
		for _, t := range examTypes {
			if e.ExamType == t {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeExams) ListStudentHomeworks(_ context.Context, _, _ string) ([]models.StudentHomework, error) {
	return f.homeworks, nil
}

func (f *fakeExams) ListMasteryExams(_ context.Context, _ string) ([]models.MasteryExam, error) {
	return f.mastery, nil
}

func (f *fakeExams) ListMasteryAttempts(_ context.Context, _ string, _ []string) ([]models.MasteryAttempt, error) {
	return f.attempts, nil
}

func (f *fakeExams) ListAttemptAnswers(_ context.Context, _ []int64) ([]models.MasteryAttemptAnswer, error) {
	return f.answers, nil
}

var errFakeStore = errors.New("store unavailable")

// weekdaysBetween lists the weekdays from start to end inclusive.
func weekdaysBetween(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			out = append(out, d)
		}
	}
	return out
}
