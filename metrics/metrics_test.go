package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDecision(t *testing.T) {
	turnDecisionsTotal.Reset()

	RecordDecision("ask_question")
	RecordDecision("ask_question")
	RecordDecision("recommend")

	assert.Equal(t, 2.0, testutil.ToFloat64(turnDecisionsTotal.WithLabelValues("ask_question")))
	assert.Equal(t, 1.0, testutil.ToFloat64(turnDecisionsTotal.WithLabelValues("recommend")))
}

func TestRecordRecommendation(t *testing.T) {
	recommendationsTotal.Reset()
	contractViolationsTotal.Reset()

	RecordRecommendation("hybrid", 0)
	RecordRecommendation("hybrid", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(recommendationsTotal.WithLabelValues("hybrid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(contractViolationsTotal.WithLabelValues("hybrid")))
}

func TestRecordHTTPRequest(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	RecordHTTPRequest("/api/chat/", "POST", 200, 0.3)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/chat/", "POST", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(httpRequestDuration))
}

func TestCallbackHandler(t *testing.T) {
	componentRunsTotal.Reset()
	componentDuration.Reset()

	h := CallbackHandler()
	info := &callbacks.RunInfo{Name: "GrainSurvey", Type: "Flow"}
	ctx := h.OnStart(context.Background(), info, nil)
	h.OnEnd(ctx, info, nil)

	modelInfo := &callbacks.RunInfo{Name: "gpt-4o", Component: components.ComponentOfChatModel}
	ctx = h.OnStart(context.Background(), modelInfo, nil)
	h.OnError(ctx, modelInfo, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(componentRunsTotal.WithLabelValues("Flow", "GrainSurvey", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(componentRunsTotal.WithLabelValues(string(components.ComponentOfChatModel), "gpt-4o", "error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	RecordDecision("recommend")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "grainagent_turn_decisions_total")
	assert.Contains(t, string(body), "go_goroutines")
}
