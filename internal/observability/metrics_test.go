package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordRequest(OutcomeOK)
	m.RecordRequest(OutcomeOK)
	m.RecordRequest(OutcomeInvalidInput)
	m.RecordResult("Plastic Bottle")
	m.RecordMapped("plastic_bottle")
	m.RecordUnmapped("person")
	m.ObserveDetect(30*time.Millisecond, nil)
	m.ObserveDetect(10*time.Millisecond, errors.New("inference failed"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeInvalidInput)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Results.WithLabelValues("Plastic Bottle")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MappedDetections.WithLabelValues("plastic_bottle")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.UnmappedClasses.WithLabelValues("person")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DetectErrors), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest(OutcomeError)
		m.RecordResult("Found nothing")
		m.RecordMapped("books")
		m.RecordUnmapped("person")
		m.ObserveDetect(time.Second, nil)
	})
}

func TestMetrics_Endpoint(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.RecordRequest(OutcomeOK)

	mux := http.NewServeMux()
	m.RegisterHandlers(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `wastescanner_requests_total{outcome="ok"} 1`)
}
