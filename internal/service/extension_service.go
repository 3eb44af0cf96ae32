package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

// Course models reported with extension metrics.
const (
	courseModelLegacy   = "legacy"
	courseModelStandard = "standard"
)

type openDayFinder interface {
	NextOpenDayInTerm(ctx context.Context, termID string, date time.Time, count int) (*time.Time, error)
}

type pacingStructureReader interface {
	FindPacingStructure(ctx context.Context, termID, id string) (*models.PacingStructure, error)
}

// ExtensionSettings holds the values written on appeals the service records.
type ExtensionSettings struct {
	Circumstances      string
	Interviewer        string
	FinalRetryAttempts int
}

// DefaultExtensionSettings returns the values used for self-service requests.
func DefaultExtensionSettings() ExtensionSettings {
	return ExtensionSettings{
		Circumstances:      "Requested extension via website",
		Interviewer:        "websites",
		FinalRetryAttempts: 1,
	}
}

// ExtensionService decides and applies accommodation and free deadline extensions.
//
// Results are integers: -1 means the extension is not offered, 0 that it was already used,
// N that N open days were granted and 100*N+k that only k of N days fit before the end of term.
type ExtensionService struct {
	milestones *MilestoneService
	calendar   openDayFinder
	structures pacingStructureReader
	overrides  milestoneOverrideStore
	appeals    milestoneAppealStore
	metrics    *MetricsService
	settings   ExtensionSettings
	logger     *zap.Logger
	now        func() time.Time
}

// NewExtensionService constructs the service.
func NewExtensionService(milestones *MilestoneService, calendar openDayFinder, structures pacingStructureReader, overrides milestoneOverrideStore, appeals milestoneAppealStore, metrics *MetricsService, settings ExtensionSettings, logger *zap.Logger) *ExtensionService {
	defaults := DefaultExtensionSettings()
	if settings.Circumstances == "" {
		settings.Circumstances = defaults.Circumstances
	}
	if settings.Interviewer == "" {
		settings.Interviewer = defaults.Interviewer
	}
	if settings.FinalRetryAttempts <= 0 {
		settings.FinalRetryAttempts = defaults.FinalRetryAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtensionService{
		milestones: milestones,
		calendar:   calendar,
		structures: structures,
		overrides:  overrides,
		appeals:    appeals,
		metrics:    metrics,
		settings:   settings,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// DaysAvailableLegacyAccommodationExtension reports the accommodation extension open to a review or final exam deadline.
func (s *ExtensionService) DaysAvailableLegacyAccommodationExtension(ctx context.Context, sd *StudentData, target LegacyTarget) (int, error) {
	return s.daysAvailableLegacy(ctx, sd, models.ExtensionAccommodation, target)
}

// DaysAvailableLegacyFreeExtension reports the free extension open to a review or final exam deadline.
func (s *ExtensionService) DaysAvailableLegacyFreeExtension(ctx context.Context, sd *StudentData, target LegacyTarget) (int, error) {
	return s.daysAvailableLegacy(ctx, sd, models.ExtensionFree, target)
}

// DaysAvailableStandardAccommodationExtension reports the accommodation extension open to a mastery deadline.
func (s *ExtensionService) DaysAvailableStandardAccommodationExtension(ctx context.Context, sd *StudentData, target StandardTarget) (int, error) {
	return s.daysAvailableStandard(ctx, sd, models.ExtensionAccommodation, target)
}

// DaysAvailableStandardFreeExtension reports the free extension open to a mastery deadline.
func (s *ExtensionService) DaysAvailableStandardFreeExtension(ctx context.Context, sd *StudentData, target StandardTarget) (int, error) {
	return s.daysAvailableStandard(ctx, sd, models.ExtensionFree, target)
}

// ApplyLegacyAccommodationExtension grants the accommodation extension on a review or final exam deadline.
func (s *ExtensionService) ApplyLegacyAccommodationExtension(ctx context.Context, sd *StudentData, target LegacyTarget) (int, error) {
	return s.applyLegacy(ctx, sd, models.ExtensionAccommodation, target)
}

// ApplyLegacyFreeExtension grants the free extension on a review or final exam deadline.
func (s *ExtensionService) ApplyLegacyFreeExtension(ctx context.Context, sd *StudentData, target LegacyTarget) (int, error) {
	return s.applyLegacy(ctx, sd, models.ExtensionFree, target)
}

// ApplyStandardAccommodationExtension grants the accommodation extension on a mastery deadline.
func (s *ExtensionService) ApplyStandardAccommodationExtension(ctx context.Context, sd *StudentData, target StandardTarget) (int, error) {
	return s.applyStandard(ctx, sd, models.ExtensionAccommodation, target)
}

// ApplyStandardFreeExtension grants the free extension on a mastery deadline.
func (s *ExtensionService) ApplyStandardFreeExtension(ctx context.Context, sd *StudentData, target StandardTarget) (int, error) {
	return s.applyStandard(ctx, sd, models.ExtensionFree, target)
}

func (s *ExtensionService) validateLegacy(target LegacyTarget) error {
	if err := s.milestones.validate(target); err != nil {
		return err
	}
	if _, ok := (models.ResolvedLegacyMilestones{}).Deadline(target.Unit, target.Type); !ok {
		return appErrors.Clone(appErrors.ErrInvalidArgument,
			fmt.Sprintf("invalid unit number for %s extension request (%d)", target.Type, target.Unit))
	}
	return nil
}

func (s *ExtensionService) daysAvailableLegacy(ctx context.Context, sd *StudentData, kind models.ExtensionKind, target LegacyTarget) (int, error) {
	if err := s.validateLegacy(target); err != nil {
		return 0, err
	}
	return s.daysAvailable(ctx, sd, kind, target.MilestoneScope, target.Type, func(number int) bool {
		if models.IsStandardMilestoneNumber(number) {
			return false
		}
		return (number/10)%10 == target.Index && number%10 == target.Unit
	})
}

func (s *ExtensionService) daysAvailableStandard(ctx context.Context, sd *StudentData, kind models.ExtensionKind, target StandardTarget) (int, error) {
	if err := s.milestones.validate(target); err != nil {
		return 0, err
	}
	return s.daysAvailable(ctx, sd, kind, target.MilestoneScope, models.MilestoneMastery, func(number int) bool {
		if !models.IsStandardMilestoneNumber(number) {
			return false
		}
		return (number/100)%10 == target.Index && (number/10)%10 == target.Unit && number%10 == target.Objective
	})
}

// daysAvailable returns the allowance, or 0 when an appeal of the consuming type already exists for the same milestone.
func (s *ExtensionService) daysAvailable(ctx context.Context, sd *StudentData, kind models.ExtensionKind, scope MilestoneScope, msType models.MilestoneType, sameMilestone func(int) bool) (int, error) {
	days, err := s.allowance(ctx, sd, kind)
	if err != nil || days <= 0 {
		return days, err
	}

	appeals, err := sd.MilestoneAppeals(ctx)
	if err != nil {
		return 0, err
	}
	for _, a := range appeals {
		if kind.ConsumedBy(a.AppealType) && a.PaceTrack == scope.Track && a.Pace == scope.Pace &&
			a.Type == msType && sameMilestone(a.Number) {
			return 0, nil
		}
	}
	return days, nil
}

func (s *ExtensionService) allowance(ctx context.Context, sd *StudentData, kind models.ExtensionKind) (int, error) {
	student, err := sd.Student(ctx)
	if err != nil {
		return 0, err
	}
	if student == nil {
		s.logger.Warn("extension requested for unknown student", zap.String("student_id", sd.StudentID))
		return -1, nil
	}

	if kind == models.ExtensionAccommodation {
		if student.ExtensionDays == nil || *student.ExtensionDays <= 0 {
			return -1, nil
		}
		return *student.ExtensionDays, nil
	}

	if student.PacingStructure == nil {
		s.logger.Warn("unable to determine pacing structure", zap.String("student_id", sd.StudentID))
		return -1, nil
	}
	ps, err := s.structures.FindPacingStructure(ctx, sd.TermID, *student.PacingStructure)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return -1, nil
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pacing structure")
	}
	if ps.FreeExtensionDays == nil || *ps.FreeExtensionDays <= 0 {
		return -1, nil
	}
	return *ps.FreeExtensionDays, nil
}

func (s *ExtensionService) applyLegacy(ctx context.Context, sd *StudentData, kind models.ExtensionKind, target LegacyTarget) (int, error) {
	days, err := s.daysAvailableLegacy(ctx, sd, kind, target)
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		s.logger.Warn("extension requested when none is available", zap.String("student_id", sd.StudentID), zap.String("kind", string(kind)))
		s.metrics.RecordExtensionOutcome(kind, courseModelLegacy, days)
		return days, nil
	}

	resolved, err := s.milestones.ResolveLegacyMilestones(ctx, sd, target.MilestoneScope)
	if err != nil {
		return 0, err
	}
	current, _ := resolved.Deadline(target.Unit, target.Type)
	key := models.LegacyMilestoneKey{Pace: target.Pace, Index: target.Index, Unit: target.Unit}

	code, err := s.grant(ctx, sd, grant{
		kind:       kind,
		scope:      target.MilestoneScope,
		number:     key.Number(),
		msType:     target.Type,
		current:    current,
		days:       days,
		finalRetry: target.Type == models.MilestoneFinalExam,
	})
	if err != nil {
		return 0, err
	}
	s.metrics.RecordExtensionOutcome(kind, courseModelLegacy, code)
	return code, nil
}

func (s *ExtensionService) applyStandard(ctx context.Context, sd *StudentData, kind models.ExtensionKind, target StandardTarget) (int, error) {
	days, err := s.daysAvailableStandard(ctx, sd, kind, target)
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		s.logger.Warn("extension requested when none is available", zap.String("student_id", sd.StudentID), zap.String("kind", string(kind)))
		s.metrics.RecordExtensionOutcome(kind, courseModelStandard, days)
		return days, nil
	}

	resolved, err := s.milestones.ResolveStandardMilestones(ctx, sd, target.MilestoneScope)
	if err != nil {
		return 0, err
	}
	current, _ := resolved.Deadline(target.Unit, target.Objective)
	key := models.StandardMilestoneKey{Pace: target.Pace, Index: target.Index, Unit: target.Unit, Objective: target.Objective}

	code, err := s.grant(ctx, sd, grant{
		kind:    kind,
		scope:   target.MilestoneScope,
		number:  key.Number(),
		msType:  models.MilestoneMastery,
		current: current,
		days:    days,
	})
	if err != nil {
		return 0, err
	}
	s.metrics.RecordExtensionOutcome(kind, courseModelStandard, code)
	return code, nil
}

type grant struct {
	kind       models.ExtensionKind
	scope      MilestoneScope
	number     int
	msType     models.MilestoneType
	current    time.Time
	days       int
	finalRetry bool
}

// grant moves the deadline by g.days open days, or by as many as fit before the end of term.
func (s *ExtensionService) grant(ctx context.Context, sd *StudentData, g grant) (int, error) {
	defer sd.ForgetMilestoneAppeals()
	defer sd.ForgetOverrides(g.scope.Track)

	newDeadline, err := s.calendar.NextOpenDayInTerm(ctx, sd.TermID, g.current, g.days)
	if err != nil {
		return 0, err
	}
	retryAttempts := s.settings.FinalRetryAttempts

	if newDeadline != nil {
		s.recordAppeal(ctx, sd, g, *newDeadline, "")
		s.upsertOverride(ctx, sd, g.scope.Track, g.number, g.msType, *newDeadline, nil)
		if g.finalRetry {
			retry, err := s.calendar.NextOpenDayInTerm(ctx, sd.TermID, *newDeadline, 1)
			if err != nil {
				s.logger.Warn("unable to place final retry after extended final exam",
					zap.String("student_id", sd.StudentID), zap.String("term_id", sd.TermID), zap.Error(err))
				retry = nil
			}
			if retry == nil {
				retry = newDeadline
			}
			s.upsertOverride(ctx, sd, g.scope.Track, g.number, models.MilestoneFinalRetry, *retry, &retryAttempts)
		}
		return g.days, nil
	}

	added := g.days - 1
	short, err := s.calendar.NextOpenDayInTerm(ctx, sd.TermID, g.current, added)
	for err == nil && added > 0 && short == nil {
		added--
		short, err = s.calendar.NextOpenDayInTerm(ctx, sd.TermID, g.current, added)
	}
	if err != nil {
		return 0, err
	}

	if added > 0 {
		comment := fmt.Sprintf("Only able to add %d days before end of term, student was allowed %d", added, g.days)
		s.recordAppeal(ctx, sd, g, *short, comment)
		s.upsertOverride(ctx, sd, g.scope.Track, g.number, g.msType, *short, nil)
		if g.finalRetry {
			s.upsertOverride(ctx, sd, g.scope.Track, g.number, models.MilestoneFinalRetry, *short, &retryAttempts)
		}
	}
	return models.PartialGrantFactor*g.days + added, nil
}

// recordAppeal appends the appeal row. A failure is logged and does not stop the override write.
func (s *ExtensionService) recordAppeal(ctx context.Context, sd *StudentData, g grant, newDeadline time.Time, comment string) {
	prior := g.current
	appeal := &models.MilestoneAppeal{
		TermID:         sd.TermID,
		StudentID:      sd.StudentID,
		AppealDateTime: s.now(),
		AppealType:     g.kind.AppealType(),
		Pace:           g.scope.Pace,
		PaceTrack:      g.scope.Track,
		Number:         g.number,
		Type:           g.msType,
		PriorDeadline:  &prior,
		NewDeadline:    &newDeadline,
		Circumstances:  s.settings.Circumstances,
		Comment:        comment,
		Interviewer:    s.settings.Interviewer,
	}
	if err := s.appeals.Create(ctx, appeal); err != nil {
		s.logger.Warn("failed to insert milestone appeal for requested extension",
			zap.String("student_id", sd.StudentID), zap.Int("ms_nbr", g.number), zap.Error(err))
	}
}

// upsertOverride writes the student's deadline for one milestone, updating the existing row for
// the same number and type when there is one. It reports whether the write succeeded.
func (s *ExtensionService) upsertOverride(ctx context.Context, sd *StudentData, track string, number int, msType models.MilestoneType, date time.Time, attempts *int) bool {
	sd.ForgetOverrides(track)
	rows, err := sd.Overrides(ctx, track)
	if err != nil {
		s.logger.Warn("failed to load student milestones", zap.String("student_id", sd.StudentID), zap.Error(err))
		return false
	}

	for _, row := range rows {
		if row.Number != number || row.Type != msType {
			continue
		}
		if err := s.overrides.UpdateDate(ctx, row.ID, date, attempts); err != nil {
			s.logger.Warn("failed to update student milestone with new deadline",
				zap.String("student_id", sd.StudentID), zap.Int("ms_nbr", number), zap.String("ms_type", string(msType)), zap.Error(err))
			return false
		}
		sd.ForgetOverrides(track)
		return true
	}

	err = s.overrides.Create(ctx, &models.StudentMilestone{
		TermID:          sd.TermID,
		StudentID:       sd.StudentID,
		PaceTrack:       track,
		Number:          number,
		Type:            msType,
		Date:            date,
		AttemptsAllowed: attempts,
	})
	if err != nil {
		s.logger.Warn("failed to insert student milestone with new deadline",
			zap.String("student_id", sd.StudentID), zap.Int("ms_nbr", number), zap.String("ms_type", string(msType)), zap.Error(err))
		return false
	}
	sd.ForgetOverrides(track)
	return true
}
