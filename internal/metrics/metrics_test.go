package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/matchqueue/internal/model"
)

func TestObserveOutcome(t *testing.T) {
	m := New()

	m.ObserveOutcome(model.Outcome{Kind: model.QueueQuick, Result: model.OutcomeMatched})
	m.ObserveOutcome(model.Outcome{Kind: model.QueueQuick, Result: model.OutcomeMatched})
	m.ObserveOutcome(model.Outcome{Kind: model.QueueRanked, Result: model.OutcomeRejected, Reason: model.RejectSkillWindow})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("quick", "matched", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("ranked", "rejected", "skill_window")))
}

func TestSetQueueDepth(t *testing.T) {
	m := New()

	m.SetQueueDepth(model.QueueQuick, 3)
	m.SetQueueDepth(model.QueueQuick, 1)
	m.SetQueueDepth(model.QueueRanked, 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueDepth.WithLabelValues("quick")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.queueDepth.WithLabelValues("ranked")))
}

func TestTrackActiveSessions(t *testing.T) {
	m := New()
	count := 2
	m.TrackActiveSessions(func() int { return count })

	expected := `
# HELP mmq_sessions_active Sessions currently held by the session table
# TYPE mmq_sessions_active gauge
mmq_sessions_active 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "mmq_sessions_active"))

	count = 5
	expected = strings.Replace(expected, "mmq_sessions_active 2", "mmq_sessions_active 5", 1)
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "mmq_sessions_active"))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.ObservePass(5 * time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mmq_matchmaking_pass_duration_seconds_count 1")
	assert.Contains(t, string(body), `mmq_http_requests_total{method="GET",route="/api/v1/health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestInstancesAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.SetQueueDepth(model.QueueQuick, 7)

	assert.Equal(t, 7.0, testutil.ToFloat64(a.queueDepth.WithLabelValues("quick")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.queueDepth.WithLabelValues("quick")))
}
