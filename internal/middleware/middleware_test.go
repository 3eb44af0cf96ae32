package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/internal/service"
)

func newTokens() *service.TokenService {
	return service.NewTokenService(service.TokenConfig{Secret: "test-secret", Issuer: "mathops"})
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTokens()
	token, _, err := tokens.Issue("adviser-1", models.RoleAdviser)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/p", JWT(tokens), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.UserID)
	})

	rec := serve(r, http.MethodGet, "/p", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "adviser-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "Bearer ").Code)
}

func TestJWTRejectsTokenWithoutRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := newTokens()
	token, _, err := tokens.Issue("812345678", "")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/p", JWT(tokens), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/p", "Bearer "+token).Code)
}

func TestAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		claims *models.JWTClaims
		path   string
		status int
	}{
		{name: "no claims", path: "/students/812345678", status: http.StatusUnauthorized},
		{name: "adviser allowed", claims: &models.JWTClaims{UserID: "a", Role: models.RoleAdviser}, path: "/students/812345678", status: http.StatusOK},
		{name: "student self", claims: &models.JWTClaims{UserID: "812345678", Role: models.RoleStudent}, path: "/students/812345678", status: http.StatusOK},
		{name: "student other", claims: &models.JWTClaims{UserID: "899999999", Role: models.RoleStudent}, path: "/students/812345678", status: http.StatusForbidden},
		{name: "unknown role with matching id", claims: &models.JWTClaims{UserID: "812345678", Role: "GUEST"}, path: "/students/812345678", status: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/students/:studentId", withClaims(tc.claims), Authorize(Roles(models.RoleAdmin, models.RoleAdviser), Self()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			assert.Equal(t, tc.status, serve(r, http.MethodGet, tc.path, "").Code)
		})
	}
}

func TestRequireRolesRejectsAdviser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin", withClaims(&models.JWTClaims{UserID: "a", Role: models.RoleAdviser}), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/admin", "").Code)
}

type recordingAudit struct {
	logs []models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, *log)
	return r.err
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &recordingAudit{}
	r := gin.New()
	claims := &models.JWTClaims{UserID: "adviser-1", Role: models.RoleAdviser}
	r.POST("/students/:studentId/extensions", withClaims(claims), Audit(writer, nil, models.AuditActionFreeExtension, "milestone"), func(c *gin.Context) {
		if c.Query("acc") != "" {
			c.Set(ContextAuditActionKey, models.AuditActionAccommodationExtension)
		}
		if c.Query("fail") != "" {
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodPost, "/students/812345678/extensions", "")
	serve(r, http.MethodPost, "/students/812345678/extensions?acc=1", "")
	serve(r, http.MethodPost, "/students/812345678/extensions?fail=1", "")

	require.Len(t, writer.logs, 2)
	first := writer.logs[0]
	assert.Equal(t, models.AuditActionFreeExtension, first.Action)
	require.NotNil(t, first.ResourceID)
	assert.Equal(t, "812345678", *first.ResourceID)
	require.NotNil(t, first.UserID)
	assert.Equal(t, "adviser-1", *first.UserID)
	assert.Equal(t, models.AuditActionAccommodationExtension, writer.logs[1].Action)
}

func TestAuditWriteFailureDoesNotFailRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &recordingAudit{err: errors.New("insert failed")}
	r := gin.New()
	r.POST("/students/:studentId/recompute", Audit(writer, nil, models.AuditActionRecompute, "student"), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	rec := serve(r, http.MethodPost, "/students/812345678/recompute", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, writer.logs, 1)
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/healthz", "")
	serve(r, http.MethodGet, "/healthz", "")

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type stubObserver struct {
	requests []recordedRequest
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	s.requests = append(s.requests, recordedRequest{method: method, route: path, status: status})
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &stubObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/students/:studentId/pace", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/students/812345678/pace", "")
	serve(r, http.MethodGet, "/wp-login.php", "")

	assert.Equal(t, []recordedRequest{
		{method: http.MethodGet, route: "/students/:studentId/pace", status: http.StatusOK},
		{method: http.MethodGet, route: unmatchedRoute, status: http.StatusNotFound},
	}, observer.requests)
}
