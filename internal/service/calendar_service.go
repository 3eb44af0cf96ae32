package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/pkg/dateutil"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type calendarRepository interface {
	ListTermWeeks(ctx context.Context, termID string) ([]models.TermWeek, error)
	ListDaysByDescription(ctx context.Context, descs ...string) ([]models.CampusCalendarDay, error)
}

type activeTermReader interface {
	Active(ctx context.Context) (*models.Term, error)
}

// CalendarService answers open-day questions for the active term or a named one.
type CalendarService struct {
	repo   calendarRepository
	terms  activeTermReader
	cache  *CacheService
	logger *zap.Logger
}

// NewCalendarService constructs the service. cache may be nil.
func NewCalendarService(repo calendarRepository, terms activeTermReader, cache *CacheService, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, terms: terms, cache: cache, logger: logger}
}

// ActiveTerm returns the active term or a not-found error.
func (s *CalendarService) ActiveTerm(ctx context.Context) (*models.Term, error) {
	return s.terms.Active(ctx)
}

// OpenDates returns the open days of the active term in ascending order.
func (s *CalendarService) OpenDates(ctx context.Context) (*models.OpenDays, error) {
	term, err := s.ActiveTerm(ctx)
	if err != nil {
		return nil, err
	}
	return s.TermOpenDates(ctx, term.ID)
}

// TermOpenDates returns the open days of one term in ascending order, cached per term.
func (s *CalendarService) TermOpenDates(ctx context.Context, termID string) (*models.OpenDays, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "term id is required")
	}

	open := &models.OpenDays{TermID: termID}
	err := s.cache.Remember(ctx, openDaysCacheKey(termID), open, func() error {
		weeks, err := s.repo.ListTermWeeks(ctx, termID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term weeks")
		}
		holidays, err := s.repo.ListDaysByDescription(ctx, models.CalendarHoliday)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
		}
		open.Dates = ComputeOpenDates(weeks, holidays)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return open, nil
}

// NextOpenDay returns the count-th open day of the active term after date, counting the first open day
// strictly after date as the first. It returns nil when that day falls past the end of the term or count <= 0.
func (s *CalendarService) NextOpenDay(ctx context.Context, date time.Time, count int) (*time.Time, error) {
	open, err := s.OpenDates(ctx)
	if err != nil {
		return nil, err
	}
	return NextOpenDay(open.Dates, date, count), nil
}

// NextOpenDayInTerm is NextOpenDay against the calendar of termID instead of the active term.
func (s *CalendarService) NextOpenDayInTerm(ctx context.Context, termID string, date time.Time, count int) (*time.Time, error) {
	open, err := s.TermOpenDates(ctx, termID)
	if err != nil {
		return nil, err
	}
	return NextOpenDay(open.Dates, date, count), nil
}

// FirstClassDate returns the first weekday of week 1 that is not a holiday.
func (s *CalendarService) FirstClassDate(ctx context.Context) (*time.Time, error) {
	weeks, holidays, err := s.loadTermCalendar(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range weeks {
		if w.WeekNumber != 1 {
			continue
		}
		d := dateutil.Truncate(w.StartDate)
		for dateutil.IsWeekend(d) || holidays[dateutil.Format(d)] {
			d = dateutil.AddDays(d, 1)
		}
		return &d, nil
	}
	return nil, nil
}

// LastClassDate returns the last weekday before finals week that is not a holiday.
func (s *CalendarService) LastClassDate(ctx context.Context) (*time.Time, error) {
	weeks, holidays, err := s.loadTermCalendar(ctx)
	if err != nil {
		return nil, err
	}
	if len(weeks) < 2 {
		return nil, nil
	}
	d := dateutil.Truncate(weeks[len(weeks)-2].EndDate)
	for dateutil.IsWeekend(d) || holidays[dateutil.Format(d)] {
		d = dateutil.AddDays(d, -1)
	}
	return &d, nil
}

func (s *CalendarService) loadTermCalendar(ctx context.Context) ([]models.TermWeek, map[string]bool, error) {
	term, err := s.ActiveTerm(ctx)
	if err != nil {
		return nil, nil, err
	}
	weeks, err := s.repo.ListTermWeeks(ctx, term.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term weeks")
	}
	days, err := s.repo.ListDaysByDescription(ctx, models.CalendarHoliday)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	sortWeeks(weeks)
	return weeks, holidaySet(days), nil
}

// ComputeOpenDates lists the weekdays of every term week except week 0 and the final week,
// leaving out holidays.
func ComputeOpenDates(weeks []models.TermWeek, holidays []models.CampusCalendarDay) []time.Time {
	sorted := append([]models.TermWeek(nil), weeks...)
	sortWeeks(sorted)
	skip := holidaySet(holidays)

	dates := []time.Time{}
	for i, w := range sorted {
		if w.WeekNumber == 0 || i == len(sorted)-1 {
			continue
		}
		end := dateutil.Truncate(w.EndDate)
		d := dateutil.Truncate(w.StartDate)
		switch d.Weekday() {
		case time.Saturday:
			d = dateutil.AddDays(d, 2)
		case time.Sunday:
			d = dateutil.AddDays(d, 1)
		}
		for !d.After(end) {
			if !skip[dateutil.Format(d)] {
				dates = append(dates, d)
			}
			if d.Weekday() == time.Friday {
				d = dateutil.AddDays(d, 3)
			} else {
				d = dateutil.AddDays(d, 1)
			}
		}
	}
	return dates
}

// NextOpenDay is the pure form of CalendarService.NextOpenDay over an ascending open-day list.
func NextOpenDay(open []time.Time, date time.Time, count int) *time.Time {
	if count <= 0 {
		return nil
	}
	day := dateutil.Truncate(date)
	first := sort.Search(len(open), func(i int) bool { return open[i].After(day) })
	target := first + count - 1
	if first >= len(open) || target >= len(open) {
		return nil
	}
	next := open[target]
	return &next
}

func sortWeeks(weeks []models.TermWeek) {
	sort.SliceStable(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })
}

func holidaySet(days []models.CampusCalendarDay) map[string]bool {
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[dateutil.Format(d.Date)] = true
	}
	return set
}
