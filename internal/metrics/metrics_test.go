package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t)
	assert.Contains(t, body, `citizenpulse_http_requests_total{code="204",method="GET",route="/ping/:id"}`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.NotContains(t, body, `route="/ping/1"`)
}

func TestHandler_ExposesDomainCounters(t *testing.T) {
	ReportsSubmitted.WithLabelValues("issue").Inc()
	StatusChanges.WithLabelValues("resolved").Inc()

	body := scrape(t)
	assert.Contains(t, body, `citizenpulse_reports_submitted_total{type="issue"}`)
	assert.Contains(t, body, `citizenpulse_status_changes_total{to="resolved"}`)
}
