package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type milestoneOverrideStore interface {
	ListByStudent(ctx context.Context, termID, track, studentID string) ([]models.StudentMilestone, error)
	Create(ctx context.Context, ms *models.StudentMilestone) error
	UpdateDate(ctx context.Context, id string, date time.Time, attempts *int) error
}

type milestoneAppealStore interface {
	ListByStudent(ctx context.Context, termID, studentID string) ([]models.MilestoneAppeal, error)
	Create(ctx context.Context, appeal *models.MilestoneAppeal) error
}

type paceAppealReader interface {
	ListByStudent(ctx context.Context, termID, studentID string) ([]models.PaceAppeal, error)
}

// StudentDataSource opens per-request StudentData views over the student's records.
type StudentDataSource struct {
	students      studentStore
	registrations registrationReader
	overrides     milestoneOverrideStore
	appeals       milestoneAppealStore
	paceAppeals   paceAppealReader
}

// NewStudentDataSource constructs the source.
func NewStudentDataSource(students studentStore, registrations registrationReader, overrides milestoneOverrideStore, appeals milestoneAppealStore, paceAppeals paceAppealReader) *StudentDataSource {
	return &StudentDataSource{
		students:      students,
		registrations: registrations,
		overrides:     overrides,
		appeals:       appeals,
		paceAppeals:   paceAppeals,
	}
}

// Open returns an empty view for one student in one term. Nothing is loaded until asked for.
func (s *StudentDataSource) Open(studentID, termID string) *StudentData {
	return &StudentData{src: s, StudentID: studentID, TermID: termID, overrides: map[string][]models.StudentMilestone{}}
}

// StudentData memoises a student's records for the lifetime of one request or job. Writers call
// the matching Forget method so later reads in the same request see their changes.
type StudentData struct {
	src       *StudentDataSource
	StudentID string
	TermID    string

	mu            sync.Mutex
	student       *models.Student
	studentLoaded bool
	registrations []models.Registration
	regsLoaded    bool
	appeals       []models.MilestoneAppeal
	appealsLoaded bool
	paceAppeals   []models.PaceAppeal
	paceLoaded    bool
	overrides     map[string][]models.StudentMilestone
}

// Student returns the student record, or nil when the student does not exist.
func (d *StudentData) Student(ctx context.Context) (*models.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.studentLoaded {
		return d.student, nil
	}
	student, err := d.src.students.FindByID(ctx, d.StudentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	d.student, d.studentLoaded = student, true
	return student, nil
}

// Registrations returns the student's registrations in the term.
func (d *StudentData) Registrations(ctx context.Context) ([]models.Registration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.regsLoaded {
		return d.registrations, nil
	}
	regs, err := d.src.registrations.ListByStudentTerm(ctx, d.StudentID, d.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	d.registrations, d.regsLoaded = regs, true
	return regs, nil
}

// MilestoneAppeals returns the student's appeal history in the term.
func (d *StudentData) MilestoneAppeals(ctx context.Context) ([]models.MilestoneAppeal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.appealsLoaded {
		return d.appeals, nil
	}
	appeals, err := d.src.appeals.ListByStudent(ctx, d.TermID, d.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load milestone appeals")
	}
	d.appeals, d.appealsLoaded = appeals, true
	return appeals, nil
}

// PaceAppeals returns the student's older pace appeal records in the term.
func (d *StudentData) PaceAppeals(ctx context.Context) ([]models.PaceAppeal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paceLoaded {
		return d.paceAppeals, nil
	}
	appeals, err := d.src.paceAppeals.ListByStudent(ctx, d.TermID, d.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pace appeals")
	}
	d.paceAppeals, d.paceLoaded = appeals, true
	return appeals, nil
}

// Overrides returns the student's milestone overrides on a pace track, oldest first.
func (d *StudentData) Overrides(ctx context.Context, track string) ([]models.StudentMilestone, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rows, ok := d.overrides[track]; ok {
		return rows, nil
	}
	rows, err := d.src.overrides.ListByStudent(ctx, d.TermID, track, d.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student milestones")
	}
	d.overrides[track] = rows
	return rows, nil
}

// ForgetStudent drops the memoised student record.
func (d *StudentData) ForgetStudent() {
	d.mu.Lock()
	d.student, d.studentLoaded = nil, false
	d.mu.Unlock()
}

// ForgetRegistrations drops the memoised registrations.
func (d *StudentData) ForgetRegistrations() {
	d.mu.Lock()
	d.registrations, d.regsLoaded = nil, false
	d.mu.Unlock()
}

// ForgetMilestoneAppeals drops the memoised appeal history.
func (d *StudentData) ForgetMilestoneAppeals() {
	d.mu.Lock()
	d.appeals, d.appealsLoaded = nil, false
	d.mu.Unlock()
}

// ForgetOverrides drops the memoised overrides of a pace track.
func (d *StudentData) ForgetOverrides(track string) {
	d.mu.Lock()
	delete(d.overrides, track)
	d.mu.Unlock()
}
