package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/dto"
	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/pkg/dateutil"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
	"github.com/srbenoit/mathops-db-sub013/pkg/response"
)

type calendarReader interface {
	OpenDates(ctx context.Context) (*models.OpenDays, error)
	NextOpenDay(ctx context.Context, date time.Time, count int) (*time.Time, error)
	FirstClassDate(ctx context.Context) (*time.Time, error)
	LastClassDate(ctx context.Context) (*time.Time, error)
}

// CalendarHandler exposes open-day lookups for the active term.
type CalendarHandler struct {
	calendar calendarReader
	now      func() time.Time
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendar calendarReader) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, now: time.Now}
}

// OpenDays godoc
// @Summary Open days of the active term
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/open-days [get]
func (h *CalendarHandler) OpenDays(c *gin.Context) {
	ctx := c.Request.Context()
	open, err := h.calendar.OpenDates(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	first, err := h.calendar.FirstClassDate(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	last, err := h.calendar.LastClassDate(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	dates := make([]string, 0, len(open.Dates))
	for _, d := range open.Dates {
		dates = append(dates, dateutil.Format(d))
	}
	response.OK(c, dto.OpenDaysResponse{TermID: open.TermID, FirstClassDate: first, LastClassDate: last, Dates: dates})
}

// NextOpenDay godoc
// @Summary Nth open day after a date
// @Tags Calendar
// @Produce json
// @Param date query string false "Start date (YYYY-MM-DD), defaults to today"
// @Param count query int false "How many open days to advance, defaults to 1"
// @Success 200 {object} response.Envelope
// @Router /calendar/next-open-day [get]
func (h *CalendarHandler) NextOpenDay(c *gin.Context) {
	from := dateutil.Truncate(h.now().UTC())
	if raw := c.Query("date"); raw != "" {
		parsed, err := dateutil.Parse(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	count, err := intQuery(c, "count", false)
	if err != nil {
		response.Error(c, err)
		return
	}
	if count == 0 {
		count = 1
	}
	if count < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "count must be positive"))
		return
	}

	next, err := h.calendar.NextOpenDay(c.Request.Context(), from, count)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := dto.NextOpenDayResponse{From: dateutil.Format(from), Count: count}
	if next != nil {
		out.Date = dateutil.Format(*next)
	}
	response.OK(c, out)
}
