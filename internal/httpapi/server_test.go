package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TontineSim/internal/metrics"
	"TontineSim/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRuns struct {
	run *model.RunResult
}

func (s staticRuns) LatestRun() (model.RunResult, bool) {
	if s.run == nil {
		return model.RunResult{}, false
	}
	return *s.run, true
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := NewServer(":0", staticRuns{}, prometheus.NewRegistry())
	rec := get(t, s.Handler(), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)
}

func TestLatestRun(t *testing.T) {
	empty := NewServer(":0", staticRuns{}, prometheus.NewRegistry())
	assert.Equal(t, http.StatusNotFound, get(t, empty.Handler(), "/runs/latest").Code)

	run := &model.RunResult{RunID: "abc", Seed: 9, Outcome: model.RunCompleted, MonthsRun: 36, ActiveMembers: 4}
	s := NewServer(":0", staticRuns{run: run}, prometheus.NewRegistry())
	rec := get(t, s.Handler(), "/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc", got.RunID)
	assert.Equal(t, model.RunCompleted, got.Outcome)
	assert.Equal(t, 36, got.MonthsRun)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)
	c.Treasury.Set(321)

	rec := get(t, NewServer(":0", staticRuns{}, reg).Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tontine_treasury_balance 321"))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := NewServer(":0", staticRuns{}, prometheus.NewRegistry()).Handler()
	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
