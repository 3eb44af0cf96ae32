package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/pkg/middleware/requestid"
)

// ContextAuditActionKey lets a handler refine the action recorded for its request.
const ContextAuditActionKey = "auditAction"

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit log entry after each successful request. The :studentId route
// parameter becomes the resource ID.
func Audit(writer auditWriter, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		recorded := action
		if override := c.GetString(ContextAuditActionKey); override != "" {
			recorded = override
		}

		var userID *string
		if claims := CurrentClaims(c); claims != nil {
			userID = &claims.UserID
		}
		var resourceID *string
		if id := c.Param("studentId"); id != "" {
			resourceID = &id
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		if err := writer.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			UserID:     userID,
			Action:     recorded,
			Resource:   resource,
			ResourceID: resourceID,
			RequestID:  requestid.Value(c),
			Details:    body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}); err != nil {
			logger.Warn("audit log write failed", zap.String("action", recorded), zap.Error(err))
		}
	}
}
