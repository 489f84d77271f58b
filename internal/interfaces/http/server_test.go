package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/valuescan/internal/progress"
	"github.com/sawpanic/valuescan/internal/providers/guards"
)

func newTestServer(t *testing.T) (*httptest.Server, *progress.Reporter, *guards.Telemetry, *RunMetrics) {
	t.Helper()
	tel := guards.NewTelemetry()
	metrics := NewRunMetrics(tel.Registry())
	rep := progress.NewReporter(metrics)

	srv := NewServer(DefaultServerConfig("127.0.0.1:0"), tel.Registry(), rep, tel)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, rep, tel, metrics
}

func TestHealth(t *testing.T) {
	ts, rep, tel, _ := newTestServer(t)
	tel.RecordCall("summary")
	tel.RecordSuccess("summary")
	rep.Candidates(12, false)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, rep.RunID(), body.RunID)
	assert.Equal(t, "candidates", body.Phase)
	assert.Equal(t, 1, body.Fetch.Calls)
	assert.NotEmpty(t, body.System.GoVersion)
}

func TestHealth_DegradedWhenMostCallsExhaust(t *testing.T) {
	ts, _, tel, _ := newTestServer(t)
	tel.RecordCall("summary")
	tel.RecordExhausted("summary")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
}

func TestStatus_ReturnsLastEvent(t *testing.T) {
	ts, rep, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	var before progress.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&before))
	resp.Body.Close()
	assert.Equal(t, rep.RunID(), before.RunID)
	assert.Empty(t, before.Type)

	rep.Processing(3, 10, "AAPL", guards.Counts{Calls: 4})

	resp, err = http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var ev progress.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Equal(t, progress.TypeProcessing, ev.Type)
	assert.Equal(t, 3, ev.Processed)
	assert.Equal(t, "AAPL", ev.Symbol)
}

func TestMetrics_ExposesRegistry(t *testing.T) {
	ts, rep, tel, _ := newTestServer(t)
	tel.RecordCacheHit("quote")
	rep.Scored(8, 6)
	rep.Done(5, "out.csv")


	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	text := buf.String()
	assert.Contains(t, text, `valuescan_cache_hits_total{kind="quote"} 1`)
	assert.Contains(t, text, "valuescan_run_selected 5")
	assert.Contains(t, text, "valuescan_run_scored 6")
	assert.Contains(t, text, `valuescan_progress_events_total{type="done"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	ts, _, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/candidates")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
