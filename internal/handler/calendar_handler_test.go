package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/internal/dto"
	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/internal/service"
	"github.com/srbenoit/mathops-db-sub013/pkg/dateutil"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type stubCalendar struct {
	dates []time.Time
	from  time.Time
	count int
}

func (s *stubCalendar) OpenDates(context.Context) (*models.OpenDays, error) {
	return &models.OpenDays{TermID: "SP24", Dates: s.dates}, nil
}

func (s *stubCalendar) NextOpenDay(_ context.Context, date time.Time, count int) (*time.Time, error) {
	s.from, s.count = date, count
	return service.NextOpenDay(s.dates, date, count), nil
}

func (s *stubCalendar) FirstClassDate(context.Context) (*time.Time, error) {
	return dateutil.Ptr(2024, time.January, 9), nil
}

func (s *stubCalendar) LastClassDate(context.Context) (*time.Time, error) {
	return dateutil.Ptr(2024, time.January, 18), nil
}

func calendarStub() *stubCalendar {
	return &stubCalendar{dates: []time.Time{
		dateutil.Date(2024, time.January, 9),
		dateutil.Date(2024, time.January, 10),
		dateutil.Date(2024, time.January, 12),
	}}
}

func TestCalendarHandlerOpenDays(t *testing.T) {
	h := NewCalendarHandler(calendarStub())

	c, rec := newDeadlineContext(http.MethodGet, "/calendar/open-days", nil, nil)
	h.OpenDays(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.OpenDaysResponse
	decodeEnvelope(t, rec, &out)
	assert.Equal(t, "SP24", out.TermID)
	assert.Equal(t, []string{"2024-01-09", "2024-01-10", "2024-01-12"}, out.Dates)
	require.NotNil(t, out.FirstClassDate)
	assert.Equal(t, 9, out.FirstClassDate.Day())
}

func TestCalendarHandlerNextOpenDay(t *testing.T) {
	cal := calendarStub()
	h := NewCalendarHandler(cal)

	c, rec := newDeadlineContext(http.MethodGet, "/x?date=2024-01-09&count=2", nil, nil)
	h.NextOpenDay(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.NextOpenDayResponse
	decodeEnvelope(t, rec, &out)
	assert.Equal(t, "2024-01-12", out.Date)
	assert.Equal(t, 2, cal.count)
}

func TestCalendarHandlerNextOpenDayDefaults(t *testing.T) {
	cal := calendarStub()
	h := NewCalendarHandler(cal)
	h.now = func() time.Time { return time.Date(2024, time.January, 11, 15, 30, 0, 0, time.UTC) }

	c, rec := newDeadlineContext(http.MethodGet, "/x", nil, nil)
	h.NextOpenDay(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.NextOpenDayResponse
	decodeEnvelope(t, rec, &out)
	assert.Equal(t, "2024-01-11", out.From)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "2024-01-12", out.Date)
}

func TestCalendarHandlerNextOpenDayPastTermEnd(t *testing.T) {
	h := NewCalendarHandler(calendarStub())

	c, rec := newDeadlineContext(http.MethodGet, "/x?date=2024-01-12", nil, nil)
	h.NextOpenDay(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.NextOpenDayResponse
	decodeEnvelope(t, rec, &out)
	assert.Empty(t, out.Date)
}

func TestCalendarHandlerNextOpenDayRejectsBadInput(t *testing.T) {
	for _, target := range []string{"/x?date=01/09/2024", "/x?count=-2", "/x?count=two"} {
		h := NewCalendarHandler(calendarStub())
		c, rec := newDeadlineContext(http.MethodGet, target, nil, nil)
		h.NextOpenDay(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

type stubTerms struct {
	filter models.TermFilter
	gotID  string
}

func (s *stubTerms) List(_ context.Context, filter models.TermFilter) ([]models.Term, error) {
	s.filter = filter
	return []models.Term{{ID: "SM24", ActiveIndex: 1}}, nil
}

func (s *stubTerms) Get(_ context.Context, id string) (*models.Term, error) {
	s.gotID = id
	if id != "SP24" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
	}
	return &models.Term{ID: "SP24"}, nil
}

func (s *stubTerms) Active(context.Context) (*models.Term, error) {
	return &models.Term{ID: "SP24"}, nil
}

func (s *stubTerms) Relative(_ context.Context, offset int) (*models.Term, error) {
	if offset != -1 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no term")
	}
	return &models.Term{ID: "FA23", ActiveIndex: -1}, nil
}

func TestTermHandlerList(t *testing.T) {
	terms := &stubTerms{}
	h := NewTermHandler(terms)

	c, rec := newDeadlineContext(http.MethodGet, "/terms?scope=Future&academic_year=2324", nil, nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TermScopeFuture, terms.filter.Scope)
	assert.Equal(t, "2324", terms.filter.AcademicYear)

	c, rec = newDeadlineContext(http.MethodGet, "/terms/active", nil, nil)
	h.GetActive(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"SP24"`)

	c, rec = newDeadlineContext(http.MethodGet, "/terms/active?offset=-1", nil, nil)
	h.GetActive(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"FA23"`)

	c, rec = newDeadlineContext(http.MethodGet, "/terms/active?offset=next", nil, nil)
	h.GetActive(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTermHandlerGet(t *testing.T) {
	terms := &stubTerms{}
	h := NewTermHandler(terms)

	c, rec := newDeadlineContext(http.MethodGet, "/terms/sp24", nil, gin.Params{{Key: "termId", Value: "sp24"}})
	h.Get(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SP24", terms.gotID)

	c, rec = newDeadlineContext(http.MethodGet, "/terms/FA99", nil, gin.Params{{Key: "termId", Value: "FA99"}})
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubReferenceCache struct {
	err   error
	calls int
}

func (s *stubReferenceCache) InvalidateReferenceData(context.Context) error {
	s.calls++
	return s.err
}

type stubPinger struct {
	err error
}

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestAdminHandlerInvalidateCache(t *testing.T) {
	cache := &stubReferenceCache{}
	h := NewAdminHandler(cache)

	c, rec := newDeadlineContext(http.MethodPost, "/admin/cache/invalidate", nil, nil)
	h.InvalidateCache(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, cache.calls)

	cache.err = errors.New("redis down")
	c, rec = newDeadlineContext(http.MethodPost, "/admin/cache/invalidate", nil, nil)
	h.InvalidateCache(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsHandlerReadiness(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), stubPinger{})
	c, rec := newDeadlineContext(http.MethodGet, "/readyz", nil, nil)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewMetricsHandler(service.NewMetricsService(), stubPinger{err: errors.New("connection refused")})
	c, rec = newDeadlineContext(http.MethodGet, "/readyz", nil, nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	c, rec = newDeadlineContext(http.MethodGet, "/admin/metrics", nil, nil)
	h.Summary(c)
	assert.Equal(t, http.StatusOK, rec.Code)
}
