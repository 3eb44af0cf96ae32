package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// Pacing structures in precedence order when a student's sections disagree.
var pacingStructurePrecedence = []string{"M", "O", "S"}

type registrationReader interface {
	ListByStudentTerm(ctx context.Context, studentID, termID string) ([]models.Registration, error)
}

type courseSectionReader interface {
	FindSection(ctx context.Context, termID, courseID, section string) (*models.CourseSection, error)
	FindPacingStructure(ctx context.Context, termID, id string) (*models.PacingStructure, error)
}

type studentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdatePacingStructure(ctx context.Context, id, pacingStructure string) error
}

type studentTermStore interface {
	Find(ctx context.Context, termID, studentID string) (*models.StudentTerm, error)
	Create(ctx context.Context, rec *models.StudentTerm) error
	UpdatePaceTrackFirstCourse(ctx context.Context, rec *models.StudentTerm) error
	Delete(ctx context.Context, termID, studentID string) error
}

// PaceTrackService classifies a student's registrations and keeps the per-term pace record current.
type PaceTrackService struct {
	sections     courseSectionReader
	students     studentStore
	studentTerms studentTermStore
	logger       *zap.Logger
}

// NewPaceTrackService constructs the service.
func NewPaceTrackService(sections courseSectionReader, students studentStore, studentTerms studentTermStore, logger *zap.Logger) *PaceTrackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaceTrackService{sections: sections, students: students, studentTerms: studentTerms, logger: logger}
}

// DeterminePacingStructure finds the pacing structure shared by the student's counted registrations,
// repairing the student record when it disagrees. Problems that do not prevent an answer are
// reported as warnings; the error is reserved for lookup and persistence failures.
func (s *PaceTrackService) DeterminePacingStructure(ctx context.Context, studentID, termID string, regs []models.Registration) (string, []string, error) {
	var warnings []string
	found := map[string]bool{}

	for _, reg := range regs {
		if !IsCountedTowardPace(reg) {
			continue
		}
		section, err := s.sections.FindSection(ctx, termID, reg.CourseID, reg.Section)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				warnings = append(warnings, fmt.Sprintf("No CSECTION record found for %s section %s", reg.CourseID, reg.Section))
				continue
			}
			return "", warnings, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course section")
		}
		if section.PacingStructure != nil {
			found[*section.PacingStructure] = true
		}
	}

	switch len(found) {
	case 0:
		warnings = append(warnings, fmt.Sprintf("Unable to determine any pacing structure for student %s", studentID))
		return "", warnings, nil
	case 1:
	default:
		warnings = append(warnings, fmt.Sprintf("Student %s has registrations with different pacing structures.", studentID))
		for _, candidate := range pacingStructurePrecedence {
			if found[candidate] {
				return candidate, warnings, nil
			}
		}
		warnings = append(warnings, fmt.Sprintf("Student %s has no recognized pacing structures.", studentID))
		return "", warnings, nil
	}

	var result string
	for ps := range found {
		result = ps
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, warnings, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return result, warnings, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if student.PacingStructure == nil || *student.PacingStructure != result {
		recorded := "null"
		if student.PacingStructure != nil {
			recorded = *student.PacingStructure
		}
		warnings = append(warnings, fmt.Sprintf("Student %s registration had pacing structure %s but student record has %s (fixed)", studentID, result, recorded))
		if err := s.students.UpdatePacingStructure(ctx, studentID, result); err != nil {
			return result, warnings, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student pacing structure")
		}
	}
	return result, warnings, nil
}

// Summarize computes pace, track, first course and pacing structure for a student in a term.
func (s *PaceTrackService) Summarize(ctx context.Context, studentID, termID string, regs []models.Registration) (*models.PaceSummary, error) {
	pace := DeterminePace(regs)
	summary := &models.PaceSummary{
		StudentID:   studentID,
		TermID:      termID,
		Pace:        pace,
		PaceTrack:   DeterminePaceTrack(regs, pace),
		FirstCourse: DetermineFirstCourse(regs),
	}
	structure, warnings, err := s.DeterminePacingStructure(ctx, studentID, termID, regs)
	if err != nil {
		return nil, err
	}
	summary.PacingStructure = structure
	summary.Warnings = warnings
	return summary, nil
}

// UpdateStudentTerm reconciles the stored pace record of a student with their registrations:
// the record is deleted when the pace is zero, inserted when absent and updated when any
// computed field changed.
func (s *PaceTrackService) UpdateStudentTerm(ctx context.Context, studentID, termID string, regs []models.Registration) error {
	pace := DeterminePace(regs)

	existing, err := s.studentTerms.Find(ctx, termID, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student term")
	}
	if errors.Is(err, sql.ErrNoRows) {
		existing = nil
	}

	if pace == 0 {
		if existing == nil {
			return nil
		}
		s.logger.Info("deleting student term", zap.String("term_id", termID), zap.String("student_id", studentID),
			zap.Int("pace", existing.Pace), zap.String("pace_track", existing.PaceTrack))
		if err := s.studentTerms.Delete(ctx, termID, studentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student term")
		}
		return nil
	}

	rec := &models.StudentTerm{
		TermID:      termID,
		StudentID:   studentID,
		Pace:        pace,
		PaceTrack:   DeterminePaceTrack(regs, pace),
		FirstCourse: DetermineFirstCourse(regs),
	}

	if existing == nil {
		s.logger.Info("inserting student term", zap.String("term_id", termID), zap.String("student_id", studentID),
			zap.Int("pace", rec.Pace), zap.String("pace_track", rec.PaceTrack), zap.String("first_course", rec.FirstCourse))
		if err := s.studentTerms.Create(ctx, rec); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student term")
		}
		return nil
	}

	if existing.Pace == rec.Pace && existing.PaceTrack == rec.PaceTrack && existing.FirstCourse == rec.FirstCourse {
		return nil
	}
	s.logger.Info("updating student term", zap.String("term_id", termID), zap.String("student_id", studentID),
		zap.Int("pace", rec.Pace), zap.String("pace_track", rec.PaceTrack), zap.String("first_course", rec.FirstCourse))
	if err := s.studentTerms.UpdatePaceTrackFirstCourse(ctx, rec); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student term")
	}
	return nil
}
