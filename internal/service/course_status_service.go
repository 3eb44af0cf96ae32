package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type examReader interface {
	ListStudentExams(ctx context.Context, studentID, courseID string, examTypes ...string) ([]models.StudentExam, error)
	ListStudentHomeworks(ctx context.Context, studentID, courseID string) ([]models.StudentHomework, error)
	ListMasteryExams(ctx context.Context, courseID string) ([]models.MasteryExam, error)
	ListMasteryAttempts(ctx context.Context, studentID string, examIDs []string) ([]models.MasteryAttempt, error)
	ListAttemptAnswers(ctx context.Context, serials []int64) ([]models.MasteryAttemptAnswer, error)
}

type completionWriter interface {
	UpdateCompletion(ctx context.Context, reg *models.Registration) error
}

type studentTermReader interface {
	Find(ctx context.Context, termID, studentID string) (*models.StudentTerm, error)
}

// CourseStatusService scores registrations and reports course progress.
type CourseStatusService struct {
	exams        examReader
	completions  completionWriter
	studentTerms studentTermReader
	sections     courseSectionReader
	milestones   *MilestoneService
	logger       *zap.Logger
}

// NewCourseStatusService constructs the service.
func NewCourseStatusService(exams examReader, completions completionWriter, studentTerms studentTermReader, sections courseSectionReader, milestones *MilestoneService, logger *zap.Logger) *CourseStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseStatusService{
		exams:        exams,
		completions:  completions,
		studentTerms: studentTerms,
		sections:     sections,
		milestones:   milestones,
		logger:       logger,
	}
}

// CheckForComplete marks a registration completed once every unit exam and the final are passed
// and the total, with on-time review bonuses, reaches the completion score. A registration that
// was completed but no longer qualifies is reverted. The returned registration reflects what was stored.
func (s *CourseStatusService) CheckForComplete(ctx context.Context, sd *StudentData, reg models.Registration) (*models.Registration, error) {
	passed, err := s.exams.ListStudentExams(ctx, reg.StudentID, reg.CourseID, models.ExamTypeUnit, models.ExamTypeFinal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}

	best := [models.LegacyUnits]int{-1, -1, -1, -1, -1}
	for _, exam := range passed {
		if !exam.Passed || exam.Score == nil || exam.Unit < 1 || exam.Unit > models.LegacyUnits {
			continue
		}
		if *exam.Score > best[exam.Unit-1] {
			best[exam.Unit-1] = *exam.Score
		}
	}
	for _, score := range best {
		if score < 0 {
			return &reg, nil
		}
	}
	if reg.Synthetic {
		return &reg, nil
	}

	st, err := s.studentTerms.Find(ctx, sd.TermID, reg.StudentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student term")
	}
	if st == nil || reg.PaceOrder == nil {
		s.logger.Warn("unable to locate milestone records", zap.String("student_id", reg.StudentID), zap.String("course", reg.CourseID))
		return &reg, nil
	}

	// A dropped course can leave a remaining one with a pace order above the pace. There are no
	// review deadlines for it, so it is scored without on-time bonuses.
	var deadlines *models.ResolvedLegacyMilestones
	if order := *reg.PaceOrder; order < 1 || order > st.Pace || st.Pace > models.MaxPace {
		s.logger.Warn("pace order outside pace, scoring without review bonus", zap.String("student_id", reg.StudentID),
			zap.String("course", reg.CourseID), zap.Int("pace", st.Pace), zap.Int("pace_order", order))
	} else {
		deadlines, err = s.milestones.ResolveLegacyMilestones(ctx, sd, MilestoneScope{Track: st.PaceTrack, Pace: st.Pace, Index: order})
		if err != nil {
			return nil, err
		}
	}
	reviews, err := s.exams.ListStudentExams(ctx, reg.StudentID, reg.CourseID, models.ExamTypeReview)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review exams")
	}

	total := 0
	for _, score := range best {
		total += score
	}
	onTime := reviewsOnTime(reviews, deadlines)
	for _, ok := range onTime {
		if ok {
			total += models.OnTimeReviewBonus
		}
	}

	switch {
	case total >= models.CompletionScore:
		grade := models.CourseGrade(total)
		reg.Completed, reg.Score, reg.CourseGrade = true, &total, &grade
	case reg.Completed:
		reg.Completed, reg.Score, reg.CourseGrade = false, nil, nil
	default:
		return &reg, nil
	}

	if err := s.completions.UpdateCompletion(ctx, &reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course completion")
	}
	sd.ForgetRegistrations()
	s.logger.Info("course completion updated", zap.String("student_id", reg.StudentID), zap.String("course", reg.CourseID),
		zap.Bool("completed", reg.Completed), zap.Int("total", total))
	return &reg, nil
}

// reviewsOnTime reports, per unit 1..4, whether a passing review exam was taken by its deadline.
// With no deadlines nothing is on time.
func reviewsOnTime(reviews []models.StudentExam, deadlines *models.ResolvedLegacyMilestones) [4]bool {
	var onTime [4]bool
	if deadlines == nil {
		return onTime
	}
	for _, rev := range reviews {
		if !rev.Passed {
			continue
		}
		deadline, ok := deadlines.ReviewDeadline(rev.Unit)
		if ok && !rev.ExamDate.After(deadline) {
			onTime[rev.Unit-1] = true
		}
	}
	return onTime
}

// ComputeStatus reports the progress of one registration. Non-counted incompletes carry no detail.
func (s *CourseStatusService) ComputeStatus(ctx context.Context, sd *StudentData, reg models.Registration) (*models.CourseStatus, error) {
	section, err := s.sections.FindSection(ctx, reg.TermID, reg.CourseID, reg.Section)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course section")
		}
		section = nil
	}

	status := &models.CourseStatus{Registration: reg, Section: section}
	if reg.IsNonCountedIncomplete() {
		return status, nil
	}
	if section == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course section not found")
	}

	if section.GradingStandard == models.GradingStandardMastery {
		mastery, err := s.LoadStandardsMastery(ctx, reg.StudentID, reg.CourseID)
		if err != nil {
			return nil, err
		}
		status.Mastery = mastery.Summary()
		return status, nil
	}

	regs, err := sd.Registrations(ctx)
	if err != nil {
		return nil, err
	}
	legacy, err := s.legacyStatus(ctx, sd, reg, PacedRegistrations(regs))
	if err != nil {
		return nil, err
	}
	status.Legacy = legacy
	return status, nil
}

func (s *CourseStatusService) legacyStatus(ctx context.Context, sd *StudentData, reg models.Registration, paced []models.Registration) (*models.LegacyCourseStatus, error) {
	pace := DeterminePace(paced)
	index := 1
	if reg.PaceOrder != nil {
		index = *reg.PaceOrder
	} else {
		for i, p := range paced {
			if p.CourseID == reg.CourseID {
				index = i + 1
				break
			}
		}
	}

	deadlines, err := s.milestones.ResolveLegacyMilestones(ctx, sd, MilestoneScope{Track: DeterminePaceTrack(paced, pace), Pace: pace, Index: index})
	if err != nil {
		return nil, err
	}
	exams, err := s.exams.ListStudentExams(ctx, reg.StudentID, reg.CourseID, models.ExamTypeReview, models.ExamTypeUnit, models.ExamTypeFinal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exams")
	}

	status := &models.LegacyCourseStatus{Deadlines: *deadlines}
	var reviews []models.StudentExam
	for _, exam := range exams {
		switch exam.ExamType {
		case models.ExamTypeReview:
			reviews = append(reviews, exam)
		case models.ExamTypeUnit:
			if exam.Score == nil || exam.Unit < 1 || exam.Unit > 4 {
				continue
			}
			u := exam.Unit - 1
			if exam.Passed {
				status.BestPassingUnit[u] = max(status.BestPassingUnit[u], *exam.Score)
			} else {
				status.BestFailedUnit[u] = max(status.BestFailedUnit[u], *exam.Score)
			}
			status.UnitAttempts[u]++
		case models.ExamTypeFinal:
			if exam.Score == nil {
				continue
			}
			if exam.Passed {
				status.BestPassingFinal = max(status.BestPassingFinal, *exam.Score)
			} else {
				status.BestFailedFinal = max(status.BestFailedFinal, *exam.Score)
			}
			status.FinalAttempts++
		}
	}

	status.ReviewOnTime = reviewsOnTime(reviews, deadlines)
	status.TotalScore = status.BestPassingFinal
	for u := 0; u < 4; u++ {
		status.TotalScore += status.BestPassingUnit[u]
		if status.ReviewOnTime[u] {
			status.TotalScore += models.OnTimeReviewBonus
		}
	}
	return status, nil
}

// LoadStandardsMastery gathers a student's mastery records for one course.
func (s *CourseStatusService) LoadStandardsMastery(ctx context.Context, studentID, courseID string) (*StandardsMastery, error) {
	wrap := func(err error, msg string) error {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}
	exams, err := s.exams.ListMasteryExams(ctx, courseID)
	if err != nil {
		return nil, wrap(err, "failed to load mastery exams")
	}
	ids := make([]string, 0, len(exams))
	for _, e := range exams {
		ids = append(ids, e.ExamID)
	}
	attempts, err := s.exams.ListMasteryAttempts(ctx, studentID, ids)
	if err != nil {
		return nil, wrap(err, "failed to load mastery attempts")
	}
	serials := make([]int64, 0, len(attempts))
	for _, a := range attempts {
		serials = append(serials, a.SerialNumber)
	}
	answers, err := s.exams.ListAttemptAnswers(ctx, serials)
	if err != nil {
		return nil, wrap(err, "failed to load mastery answers")
	}
	homeworks, err := s.exams.ListStudentHomeworks(ctx, studentID, courseID)
	if err != nil {
		return nil, wrap(err, "failed to load homeworks")
	}
	return NewStandardsMastery(exams, attempts, answers, homeworks), nil
}
