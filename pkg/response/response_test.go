package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestErrorHidesCause(t *testing.T) {
	c, rec := newContext()
	c.Set("request_id", "req-1")

	Error(c, appErrors.Wrap(errors.New("pq: relation missing"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq: relation")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Len(t, c.Errors, 1)

	var body struct {
		Error appErrors.Error        `json:"error"`
		Meta  map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "failed to load term", body.Error.Message)
	assert.Equal(t, "req-1", body.Meta["request_id"])
}

func TestAccepted(t *testing.T) {
	c, rec := newContext()
	Accepted(c, gin.H{"job_id": "abc"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"data":{"job_id":"abc"}}`, rec.Body.String())
}
