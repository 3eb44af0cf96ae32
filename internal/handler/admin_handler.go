package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/pkg/response"
)

type referenceCache interface {
	InvalidateReferenceData(ctx context.Context) error
}

// AdminHandler exposes operator-only maintenance endpoints.
type AdminHandler struct {
	cache referenceCache
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(cache referenceCache) *AdminHandler {
	return &AdminHandler{cache: cache}
}

// InvalidateCache godoc
// @Summary Drop cached milestones and open days
// @Description Run after editing base milestones or the campus calendar
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/cache/invalidate [post]
func (h *AdminHandler) InvalidateCache(c *gin.Context) {
	if err := h.cache.InvalidateReferenceData(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"invalidated": []string{"milestones", "calendar"}})
}
