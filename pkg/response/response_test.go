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

	appErrors "github.com/noah-isme/class-routine-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONWithMeta(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, gin.H{"academic_year": "2024-2025"}, map[string]interface{}{"cache_hit": true})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2024-2025", body["data"]["academic_year"])
	assert.Equal(t, true, body["meta"]["cache_hit"])

	c, w = newContext()
	JSON(c, http.StatusOK, gin.H{}, map[string]interface{}{})
	assert.NotContains(t, w.Body.String(), "meta")
}

func TestErrorHidesInternalCause(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Len(t, c.Errors, 1)

	c, w = newContext()
	Error(c, appErrors.Clone(appErrors.ErrRunInProgress, ""))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RUN_IN_PROGRESS")
	assert.Empty(t, c.Errors)
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "application/pdf", "routine-2024-2025.pdf", []byte("%PDF-1.3"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="routine-2024-2025.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestAccepted(t *testing.T) {
	c, w := newContext()
	Accepted(c, gin.H{"job_id": "job-1"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}
