package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

type activeTermResolver interface {
	Active(ctx context.Context) (*models.Term, error)
}

func studentParam(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("studentId"))
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	return id, nil
}

// termFromQuery returns ?term_id=, falling back to the active term.
func termFromQuery(c *gin.Context, terms activeTermResolver) (string, error) {
	if id := strings.TrimSpace(c.Query("term_id")); id != "" {
		return id, nil
	}
	term, err := terms.Active(c.Request.Context())
	if err != nil {
		return "", err
	}
	return term.ID, nil
}

func intQuery(c *gin.Context, name string, required bool) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if required {
			return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is required", name))
		}
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}
