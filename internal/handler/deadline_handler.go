package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/dto"
	"github.com/srbenoit/mathops-db-sub013/internal/middleware"
	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/internal/service"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
	"github.com/srbenoit/mathops-db-sub013/pkg/response"
)

// Course models addressed by the :model path segment.
const (
	modelLegacy   = "legacy"
	modelStandard = "standard"
)

type milestoneResolver interface {
	ResolveLegacyMilestones(ctx context.Context, sd *service.StudentData, scope service.MilestoneScope) (*models.ResolvedLegacyMilestones, error)
	ResolveStandardMilestones(ctx context.Context, sd *service.StudentData, scope service.MilestoneScope) (*models.ResolvedStandardMilestones, error)
	GetAppeals(ctx context.Context, sd *service.StudentData, scope service.MilestoneScope) ([]models.MilestoneAppeal, error)
}

type extensionEngine interface {
	DaysAvailableLegacyAccommodationExtension(ctx context.Context, sd *service.StudentData, target service.LegacyTarget) (int, error)
	DaysAvailableLegacyFreeExtension(ctx context.Context, sd *service.StudentData, target service.LegacyTarget) (int, error)
	DaysAvailableStandardAccommodationExtension(ctx context.Context, sd *service.StudentData, target service.StandardTarget) (int, error)
	DaysAvailableStandardFreeExtension(ctx context.Context, sd *service.StudentData, target service.StandardTarget) (int, error)
	ApplyLegacyAccommodationExtension(ctx context.Context, sd *service.StudentData, target service.LegacyTarget) (int, error)
	ApplyLegacyFreeExtension(ctx context.Context, sd *service.StudentData, target service.LegacyTarget) (int, error)
	ApplyStandardAccommodationExtension(ctx context.Context, sd *service.StudentData, target service.StandardTarget) (int, error)
	ApplyStandardFreeExtension(ctx context.Context, sd *service.StudentData, target service.StandardTarget) (int, error)
}

// DeadlineHandler exposes resolved milestones, appeals and extensions.
type DeadlineHandler struct {
	source     studentDataOpener
	terms      activeTermResolver
	milestones milestoneResolver
	extensions extensionEngine
}

// NewDeadlineHandler constructs DeadlineHandler.
func NewDeadlineHandler(source studentDataOpener, terms activeTermResolver, milestones milestoneResolver, extensions extensionEngine) *DeadlineHandler {
	return &DeadlineHandler{source: source, terms: terms, milestones: milestones, extensions: extensions}
}

func (h *DeadlineHandler) open(c *gin.Context, termID string) (*service.StudentData, error) {
	studentID, err := studentParam(c)
	if err != nil {
		return nil, err
	}
	if termID == "" {
		if termID, err = termFromQuery(c, h.terms); err != nil {
			return nil, err
		}
	}
	return h.source.Open(studentID, termID), nil
}

func scopeFromQuery(c *gin.Context) (service.MilestoneScope, error) {
	var scope service.MilestoneScope
	var err error
	scope.Track = strings.TrimSpace(c.Query("track"))
	if scope.Pace, err = intQuery(c, "pace", true); err != nil {
		return scope, err
	}
	if scope.Index, err = intQuery(c, "index", true); err != nil {
		return scope, err
	}
	return scope, nil
}

func courseModel(c *gin.Context) (string, error) {
	switch model := c.Param("model"); model {
	case modelLegacy, modelStandard:
		return model, nil
	}
	return "", appErrors.Clone(appErrors.ErrNotFound, "unknown course model")
}

// Milestones godoc
// @Summary Resolved milestones
// @Description Effective deadlines of one course after the student's overrides
// @Tags Deadlines
// @Produce json
// @Param studentId path string true "Student ID"
// @Param model path string true "legacy or standard"
// @Param track query string true "Pace track"
// @Param pace query int true "Pace"
// @Param index query int true "Course index within the pace"
// @Param term_id query string false "Term (defaults to the active term)"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{studentId}/milestones/{model} [get]
func (h *DeadlineHandler) Milestones(c *gin.Context) {
	model, err := courseModel(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	scope, err := scopeFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sd, err := h.open(c, "")
	if err != nil {
		response.Error(c, err)
		return
	}

	var resolved interface{}
	if model == modelLegacy {
		resolved, err = h.milestones.ResolveLegacyMilestones(c.Request.Context(), sd, scope)
	} else {
		resolved, err = h.milestones.ResolveStandardMilestones(c.Request.Context(), sd, scope)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resolved)
}

// Appeals godoc
// @Summary Appeal history
// @Tags Deadlines
// @Produce json
// @Param studentId path string true "Student ID"
// @Param track query string true "Pace track"
// @Param pace query int true "Pace"
// @Param index query int true "Course index within the pace"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/appeals [get]
func (h *DeadlineHandler) Appeals(c *gin.Context) {
	scope, err := scopeFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sd, err := h.open(c, "")
	if err != nil {
		response.Error(c, err)
		return
	}
	appeals, err := h.milestones.GetAppeals(c.Request.Context(), sd, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appeals)
}

// DaysAvailable godoc
// @Summary Extension days available
// @Description -1 when the extension is not offered, 0 when already used, otherwise the number of open days
// @Tags Deadlines
// @Produce json
// @Param studentId path string true "Student ID"
// @Param model path string true "legacy or standard"
// @Param kind query string true "accommodation or free"
// @Param track query string true "Pace track"
// @Param pace query int true "Pace"
// @Param index query int true "Course index within the pace"
// @Param unit query int true "Unit"
// @Param objective query int false "Objective (standard)"
// @Param ms_type query string false "RE or FE (legacy)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/extensions/{model} [get]
func (h *DeadlineHandler) DaysAvailable(c *gin.Context) {
	req := dto.ExtensionRequest{
		TermID: strings.TrimSpace(c.Query("term_id")),
		Kind:   models.ExtensionKind(c.Query("kind")),
		Track:  strings.TrimSpace(c.Query("track")),
		MsType: models.MilestoneType(strings.ToUpper(c.Query("ms_type"))),
	}
	var err error
	for name, dest := range map[string]*int{"pace": &req.Pace, "index": &req.Index, "unit": &req.Unit} {
		if *dest, err = intQuery(c, name, true); err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.Objective, err = intQuery(c, "objective", false); err != nil {
		response.Error(c, err)
		return
	}
	h.handleExtension(c, req, false)
}

// Apply godoc
// @Summary Apply an extension
// @Description Moves the deadline by the available open days; partial grants are encoded as 100*requested+granted
// @Tags Deadlines
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param model path string true "legacy or standard"
// @Param payload body dto.ExtensionRequest true "Extension target"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/extensions/{model} [post]
func (h *DeadlineHandler) Apply(c *gin.Context) {
	var req dto.ExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.MsType = models.MilestoneType(strings.ToUpper(string(req.MsType)))
	h.handleExtension(c, req, true)
}

func (h *DeadlineHandler) handleExtension(c *gin.Context, req dto.ExtensionRequest, apply bool) {
	model, err := courseModel(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.Kind != models.ExtensionAccommodation && req.Kind != models.ExtensionFree {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be accommodation or free"))
		return
	}
	sd, err := h.open(c, req.TermID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if apply {
		action := models.AuditActionFreeExtension
		if req.Kind == models.ExtensionAccommodation {
			action = models.AuditActionAccommodationExtension
		}
		c.Set(middleware.ContextAuditActionKey, action)
	}

	scope := service.MilestoneScope{Track: req.Track, Pace: req.Pace, Index: req.Index}
	code, err := h.dispatch(c.Request.Context(), sd, model, req, scope, apply)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ExtensionResponse{StudentID: sd.StudentID, Kind: req.Kind, Outcome: models.DecodeExtensionOutcome(code)})
}

func (h *DeadlineHandler) dispatch(ctx context.Context, sd *service.StudentData, model string, req dto.ExtensionRequest, scope service.MilestoneScope, apply bool) (int, error) {
	accommodation := req.Kind == models.ExtensionAccommodation
	if model == modelLegacy {
		target := service.LegacyTarget{MilestoneScope: scope, Unit: req.Unit, Type: req.MsType}
		switch {
		case apply && accommodation:
			return h.extensions.ApplyLegacyAccommodationExtension(ctx, sd, target)
		case apply:
			return h.extensions.ApplyLegacyFreeExtension(ctx, sd, target)
		case accommodation:
			return h.extensions.DaysAvailableLegacyAccommodationExtension(ctx, sd, target)
		default:
			return h.extensions.DaysAvailableLegacyFreeExtension(ctx, sd, target)
		}
	}

	target := service.StandardTarget{MilestoneScope: scope, Unit: req.Unit, Objective: req.Objective}
	switch {
	case apply && accommodation:
		return h.extensions.ApplyStandardAccommodationExtension(ctx, sd, target)
	case apply:
		return h.extensions.ApplyStandardFreeExtension(ctx, sd, target)
	case accommodation:
		return h.extensions.DaysAvailableStandardAccommodationExtension(ctx, sd, target)
	default:
		return h.extensions.DaysAvailableStandardFreeExtension(ctx, sd, target)
	}
}
