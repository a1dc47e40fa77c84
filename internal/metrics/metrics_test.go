package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTaskOutcome(t *testing.T) {
	assert.Equal(t, "success", taskOutcome(nil))
	assert.Equal(t, "retry", taskOutcome(errors.New("minio down")))
	assert.Equal(t, "skipped", taskOutcome(errors.Join(asynq.SkipRetry, errors.New("bad payload"))))
}

func TestAsynqMetricsMiddleware(t *testing.T) {
	h := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return asynq.SkipRetry
	}))

	before := testutil.ToFloat64(tasksProcessedTotal.WithLabelValues("test:skip", "skipped"))
	_ = h.ProcessTask(context.Background(), asynq.NewTask("test:skip", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(tasksProcessedTotal.WithLabelValues("test:skip", "skipped")))
	assert.Equal(t, float64(0), testutil.ToFloat64(taskInProgress.WithLabelValues("test:skip")))
}

func TestGinMiddleware_RouteLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere/1", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/items/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(requestsInFlight))
}

func TestSessionMetrics(t *testing.T) {
	SetEditingSessions(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(editingSessions))

	before := testutil.ToFloat64(sessionsExpiredTotal)
	ObserveExpiredSessions(2)
	ObserveExpiredSessions(0)
	assert.Equal(t, before+2, testutil.ToFloat64(sessionsExpiredTotal))
}
