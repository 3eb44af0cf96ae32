package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/dto"
	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/internal/service"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
	"github.com/srbenoit/mathops-db-sub013/pkg/response"
)

type studentDataOpener interface {
	Open(studentID, termID string) *service.StudentData
}

type paceSummarizer interface {
	Summarize(ctx context.Context, studentID, termID string, regs []models.Registration) (*models.PaceSummary, error)
}

type recomputeQueue interface {
	Enqueue(req service.RecomputeRequest) (string, error)
}

type courseStatusComputer interface {
	ComputeStatus(ctx context.Context, sd *service.StudentData, reg models.Registration) (*models.CourseStatus, error)
}

// StudentHandler exposes per-student pace, recompute and course status endpoints.
type StudentHandler struct {
	source    studentDataOpener
	terms     activeTermResolver
	pace      paceSummarizer
	recompute recomputeQueue
	status    courseStatusComputer
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(source studentDataOpener, terms activeTermResolver, pace paceSummarizer, recompute recomputeQueue, status courseStatusComputer) *StudentHandler {
	return &StudentHandler{source: source, terms: terms, pace: pace, recompute: recompute, status: status}
}

func (h *StudentHandler) open(c *gin.Context) (*service.StudentData, error) {
	studentID, err := studentParam(c)
	if err != nil {
		return nil, err
	}
	termID, err := termFromQuery(c, h.terms)
	if err != nil {
		return nil, err
	}
	return h.source.Open(studentID, termID), nil
}

// Pace godoc
// @Summary Pace classification
// @Description Pace, pace track, first course and pacing structure of a student's registrations
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term_id query string false "Term (defaults to the active term)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/pace [get]
func (h *StudentHandler) Pace(c *gin.Context) {
	sd, err := h.open(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	regs, err := sd.Registrations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.pace.Summarize(c.Request.Context(), sd.StudentID, sd.TermID, regs)
	if err != nil {
		response.Error(c, err)
		return
	}

	courses := []string{}
	for _, reg := range service.PacedRegistrations(regs) {
		courses = append(courses, reg.CourseID)
	}
	response.OK(c, dto.PaceResponse{PaceSummary: *summary, Courses: courses})
}

// Recompute godoc
// @Summary Queue a recompute
// @Description Refreshes the stored pace record and re-checks course completion in the background
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term_id query string false "Term (defaults to the active term)"
// @Success 202 {object} response.Envelope
// @Router /students/{studentId}/recompute [post]
func (h *StudentHandler) Recompute(c *gin.Context) {
	sd, err := h.open(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	jobID, err := h.recompute.Enqueue(service.RecomputeRequest{StudentID: sd.StudentID, TermID: sd.TermID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.RecomputeResponse{JobID: jobID, StudentID: sd.StudentID, TermID: sd.TermID})
}

// CourseStatus godoc
// @Summary Course status
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Param course path string true "Course ID, e.g. M 117"
// @Param term_id query string false "Term (defaults to the active term)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentId}/courses/{course}/status [get]
func (h *StudentHandler) CourseStatus(c *gin.Context) {
	sd, err := h.open(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	regs, err := sd.Registrations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	course := c.Param("course")
	for _, reg := range regs {
		if reg.CourseID != course {
			continue
		}
		status, err := h.status.ComputeStatus(c.Request.Context(), sd, reg)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, status)
		return
	}
	response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "registration not found"))
}
