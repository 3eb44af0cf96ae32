package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/terms", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/terms", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListedOriginGetsCredentials(t *testing.T) {
	w := serve([]string{"https://precalc.example.edu/"}, http.MethodGet, "https://precalc.example.edu")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://precalc.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
}

func TestUnlistedOriginIsNotAllowed(t *testing.T) {
	w := serve([]string{"https://precalc.example.edu"}, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWildcard(t *testing.T) {
	w := serve([]string{"*"}, http.MethodGet, "https://any.example.com")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(nil, http.MethodGet, "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	w := serve(nil, http.MethodOptions, "https://any.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
