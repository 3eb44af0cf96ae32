package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type milestoneDefinitionReader interface {
	ListByTermPaceTrack(ctx context.Context, termID string, pace int, track string) ([]models.Milestone, error)
}

// MilestoneScope selects one course of a student's pace: the track, the pace and the course's index in it.
type MilestoneScope struct {
	Track string `json:"track" validate:"required,max=2"`
	Pace  int    `json:"pace" validate:"min=1,max=5"`
	Index int    `json:"index" validate:"min=1,ltefield=Pace"`
}

// LegacyTarget addresses one review or final exam deadline.
type LegacyTarget struct {
	MilestoneScope
	Unit int                  `json:"unit" validate:"min=1,max=5"`
	Type models.MilestoneType `json:"ms_type" validate:"oneof=RE FE"`
}

// StandardTarget addresses one mastery deadline.
type StandardTarget struct {
	MilestoneScope
	Unit      int `json:"unit" validate:"min=1,max=8"`
	Objective int `json:"objective" validate:"min=1,max=3"`
}

// MilestoneService resolves the effective deadlines of a student's course.
type MilestoneService struct {
	definitions milestoneDefinitionReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMilestoneService constructs the service. cache may be nil.
func NewMilestoneService(definitions milestoneDefinitionReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MilestoneService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilestoneService{definitions: definitions, cache: cache, validator: validate, logger: logger}
}

func (s *MilestoneService) validate(v interface{}) error {
	if err := s.validator.Struct(v); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "invalid milestone target")
	}
	return nil
}

func (s *MilestoneService) baseMilestones(ctx context.Context, termID string, scope MilestoneScope) ([]models.Milestone, error) {
	var rows []models.Milestone
	key := milestoneCacheKey(termID, scope.Pace, scope.Track)
	err := s.cache.Remember(ctx, key, &rows, func() error {
		loaded, err := s.definitions.ListByTermPaceTrack(ctx, termID, scope.Pace, scope.Track)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load milestones")
		}
		rows = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingConfiguration,
			fmt.Sprintf("no milestones defined for pace %d track %s in %s", scope.Pace, scope.Track, termID))
	}
	return rows, nil
}

// ResolveLegacyMilestones returns the review and final exam deadlines of one course after applying
// the student's overrides.
func (s *MilestoneService) ResolveLegacyMilestones(ctx context.Context, sd *StudentData, scope MilestoneScope) (*models.ResolvedLegacyMilestones, error) {
	if err := s.validate(scope); err != nil {
		return nil, err
	}
	rows, err := s.baseMilestones(ctx, sd.TermID, scope)
	if err != nil {
		return nil, err
	}

	// base[unit-1] holds RE1..RE4 and FE; f1 is tracked separately.
	var base [models.LegacyUnits]*models.Milestone
	var f1 *models.Milestone
	for i := range rows {
		row := &rows[i]
		if models.IsStandardMilestoneNumber(row.Number) || models.MilestoneIndex(row.Number) != scope.Index {
			continue
		}
		unit := row.Number % 10
		switch {
		case row.Type == models.MilestoneReviewExam && unit >= 1 && unit <= 4:
			base[unit-1] = row
		case row.Type == models.MilestoneFinalExam && unit == models.LegacyUnits:
			base[unit-1] = row
		case row.Type == models.MilestoneFinalRetry && unit == models.LegacyUnits:
			f1 = row
		}
	}
	for _, row := range base {
		if row == nil || f1 == nil {
			return nil, appErrors.Clone(appErrors.ErrMissingConfiguration,
				fmt.Sprintf("incomplete milestones defined for pace %d track %s in %s", scope.Pace, scope.Track, sd.TermID))
		}
	}

	dates := [models.LegacyUnits]time.Time{}
	for i, row := range base {
		dates[i] = row.Date
	}
	resolved := &models.ResolvedLegacyMilestones{F1: f1.Date, F1Attempts: f1.AttemptsAllowed}

	overrides, err := sd.Overrides(ctx, scope.Track)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		switch o.Type {
		case models.MilestoneReviewExam, models.MilestoneFinalExam:
			for i, row := range base {
				if row.Type == o.Type && row.Number == o.Number {
					dates[i] = o.Date
				}
			}
		case models.MilestoneFinalRetry:
			if o.Number == f1.Number {
				resolved.F1 = o.Date
				if o.AttemptsAllowed != nil {
					resolved.F1Attempts = o.AttemptsAllowed
				}
			}
		}
	}

	resolved.RE1, resolved.RE2, resolved.RE3, resolved.RE4, resolved.FE = dates[0], dates[1], dates[2], dates[3], dates[4]
	return resolved, nil
}

// ResolveStandardMilestones returns the mastery deadline grid of one course after applying the
// student's overrides. Every unit and objective must have a base deadline.
func (s *MilestoneService) ResolveStandardMilestones(ctx context.Context, sd *StudentData, scope MilestoneScope) (*models.ResolvedStandardMilestones, error) {
	if err := s.validate(scope); err != nil {
		return nil, err
	}
	rows, err := s.baseMilestones(ctx, sd.TermID, scope)
	if err != nil {
		return nil, err
	}

	var seen [models.StandardUnits][models.StandardObjectives]bool
	resolved := &models.ResolvedStandardMilestones{}
	for _, row := range rows {
		key, ok := standardKeyFor(row.Type, row.Number, scope)
		if !ok {
			continue
		}
		resolved.Dates[key.Unit-1][key.Objective-1] = row.Date
		seen[key.Unit-1][key.Objective-1] = true
	}
	for u := range seen {
		for o := range seen[u] {
			if !seen[u][o] {
				return nil, appErrors.Clone(appErrors.ErrMissingConfiguration,
					fmt.Sprintf("missing mastery milestone for unit %d objective %d", u+1, o+1))
			}
		}
	}

	overrides, err := sd.Overrides(ctx, scope.Track)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		if key, ok := standardKeyFor(o.Type, o.Number, scope); ok {
			resolved.Dates[key.Unit-1][key.Objective-1] = o.Date
		}
	}
	return resolved, nil
}

func standardKeyFor(msType models.MilestoneType, number int, scope MilestoneScope) (models.StandardMilestoneKey, bool) {
	if msType != models.MilestoneMastery {
		return models.StandardMilestoneKey{}, false
	}
	key, err := models.DecodeStandardMilestoneKey(number)
	if err != nil || key.Pace != scope.Pace || key.Index != scope.Index {
		return models.StandardMilestoneKey{}, false
	}
	return key, true
}

// GetAppeals lists the appeals recorded against one course, including older pace appeals
// presented as milestone appeals, ordered by appeal time.
func (s *MilestoneService) GetAppeals(ctx context.Context, sd *StudentData, scope MilestoneScope) ([]models.MilestoneAppeal, error) {
	if err := s.validate(scope); err != nil {
		return nil, err
	}
	appeals, err := sd.MilestoneAppeals(ctx)
	if err != nil {
		return nil, err
	}
	legacy, err := sd.PaceAppeals(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]models.MilestoneAppeal, 0, len(appeals))
	for _, a := range appeals {
		if a.PaceTrack == scope.Track && a.Pace == scope.Pace && models.MilestoneIndex(a.Number) == scope.Index {
			matching = append(matching, a)
		}
	}
	for _, p := range legacy {
		if p.PaceTrack == scope.Track && p.Pace == scope.Pace && (p.Number/10)%10 == scope.Index {
			matching = append(matching, ConvertPaceAppeal(p))
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].AppealDateTime.Before(matching[j].AppealDateTime)
	})
	return matching, nil
}

// ConvertPaceAppeal presents an older pace appeal as a milestone appeal made at noon on its appeal date.
func ConvertPaceAppeal(p models.PaceAppeal) models.MilestoneAppeal {
	day := p.AppealDate
	return models.MilestoneAppeal{
		TermID:          p.TermID,
		StudentID:       p.StudentID,
		AppealDateTime:  time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC),
		AppealType:      InferAppealType(p.Circumstances),
		Pace:            p.Pace,
		PaceTrack:       p.PaceTrack,
		Number:          p.Number,
		Type:            p.Type,
		PriorDeadline:   p.Deadline,
		NewDeadline:     p.NewDeadline,
		AttemptsAllowed: p.AttemptsAllowed,
		Circumstances:   p.Circumstances,
		Comment:         p.Comment,
		Interviewer:     p.Interviewer,
	}
}

// InferAppealType classifies free-text circumstances from an older appeal record.
func InferAppealType(circumstances string) models.AppealType {
	text := strings.ToLower(circumstances)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
	switch {
	case text == "":
		return models.AppealOther
	case containsAny("sdc", "rds"):
		return models.AppealAccommodation
	case containsAny("university excused", "university-excused"):
		return models.AppealUniversityExcused
	case containsAny("family emergency"):
		return models.AppealFamily
	case containsAny("medical", "doctor", "hospital"):
		return models.AppealMedical
	}
	return models.AppealOther
}
