package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/pkg/response"
)

type termReader interface {
	List(ctx context.Context, filter models.TermFilter) ([]models.Term, error)
	Get(ctx context.Context, id string) (*models.Term, error)
	Active(ctx context.Context) (*models.Term, error)
	Relative(ctx context.Context, offset int) (*models.Term, error)
}

// TermHandler serves the term table.
type TermHandler struct {
	service termReader
}

// NewTermHandler constructs a term handler.
func NewTermHandler(svc termReader) *TermHandler {
	return &TermHandler{service: svc}
}

// List godoc
// @Summary List terms
// @Tags Terms
// @Produce json
// @Param scope query string false "past, active or future"
// @Param academic_year query string false "Academic year code, e.g. 2324"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /terms [get]
func (h *TermHandler) List(c *gin.Context) {
	filter := models.TermFilter{
		Scope:        models.TermScope(strings.ToLower(strings.TrimSpace(c.Query("scope")))),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
	}

	terms, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, terms)
}

// Get godoc
// @Summary Get a term by key
// @Tags Terms
// @Produce json
// @Param termId path string true "Term key, e.g. SP24"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{termId} [get]
func (h *TermHandler) Get(c *gin.Context) {
	term, err := h.service.Get(c.Request.Context(), strings.ToUpper(c.Param("termId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, term)
}

// GetActive godoc
// @Summary Get the active term, or a term relative to it
// @Tags Terms
// @Produce json
// @Param offset query int false "Terms after (positive) or before (negative) the active one"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/active [get]
func (h *TermHandler) GetActive(c *gin.Context) {
	offset, err := intQuery(c, "offset", false)
	if err != nil {
		response.Error(c, err)
		return
	}

	var term *models.Term
	if offset == 0 {
		term, err = h.service.Active(c.Request.Context())
	} else {
		term, err = h.service.Relative(c.Request.Context(), offset)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, term)
}
