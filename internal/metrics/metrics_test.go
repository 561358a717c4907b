package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func findFamily(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("GET", "/api/time-entries", 200, 0.05)
	m.ObserveHTTPRequest("GET", "/api/time-entries", 200, 0.02)
	m.ObserveHTTPRequest("POST", "/api/login", 401, 0.01)

	mf := findFamily(t, m, "pilotage_http_requests_total")
	if mf == nil {
		t.Fatal("request counter family not registered")
	}
	if got := sumCounter(mf); got != 3 {
		t.Errorf("total requests = %v, want 3", got)
	}

	dur := findFamily(t, m, "pilotage_http_request_duration_seconds")
	if dur == nil {
		t.Fatal("duration histogram family not registered")
	}
	var samples uint64
	for _, metric := range dur.GetMetric() {
		samples += metric.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Errorf("histogram samples = %d, want 3", samples)
	}
}

func TestAuthCounters(t *testing.T) {
	m := New()
	m.IncAuthSuccess()
	m.IncAuthFailure("bad_credentials")
	m.IncAuthFailure("bad_credentials")
	m.IncAuthFailure("expired_session")

	if got := sumCounter(findFamily(t, m, "pilotage_auth_successes_total")); got != 1 {
		t.Errorf("auth successes = %v, want 1", got)
	}
	failures := findFamily(t, m, "pilotage_auth_failures_total")
	if got := sumCounter(failures); got != 3 {
		t.Errorf("auth failures = %v, want 3", got)
	}
	if got := counterWithLabel(failures, "reason", "bad_credentials"); got != 2 {
		t.Errorf("bad_credentials failures = %v, want 2", got)
	}
}

func TestObserveRecapRun(t *testing.T) {
	m := New()
	m.ObserveRecapRun("success", 2.5, 4)
	m.ObserveRecapRun("error", 0.3, 0)

	runs := findFamily(t, m, "pilotage_recap_runs_total")
	if got := counterWithLabel(runs, "status", "success"); got != 1 {
		t.Errorf("successful runs = %v, want 1", got)
	}
	if got := counterWithLabel(runs, "status", "error"); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := sumCounter(findFamily(t, m, "pilotage_recap_emails_total")); got != 4 {
		t.Errorf("recap emails = %v, want 4", got)
	}
}

func TestComputeErrorRate(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("GET", "/api/me", 200, 0.01)
	m.ObserveHTTPRequest("GET", "/api/me", 200, 0.01)
	m.ObserveHTTPRequest("GET", "/api/me", 500, 0.01)
	m.ObserveHTTPRequest("GET", "/api/me", 503, 0.01)

	mf := findFamily(t, m, "pilotage_http_requests_total")
	if got := computeErrorRate(mf); got != 0.5 {
		t.Errorf("error rate = %v, want 0.5", got)
	}
}

func TestSummaryHandler(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("POST", "/api/login", 200, 0.03)
	m.IncAuthSuccess()

	rec := httptest.NewRecorder()
	m.SummaryHandler()(rec, httptest.NewRequest(http.MethodGet, "/metrics/summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var s Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if s.HTTPRequestsTotal != 1 {
		t.Errorf("summary requests = %v, want 1", s.HTTPRequestsTotal)
	}
	if s.AuthSuccessesTotal != 1 {
		t.Errorf("summary auth successes = %v, want 1", s.AuthSuccessesTotal)
	}
	if s.UptimeSeconds < 0 {
		t.Errorf("uptime should not be negative, got %v", s.UptimeSeconds)
	}
}

func TestHistogramPercentile(t *testing.T) {
	m := New()
	for i := 0; i < 90; i++ {
		m.ObserveHTTPRequest("GET", "/api/me", 200, 0.01)
	}
	for i := 0; i < 10; i++ {
		m.ObserveHTTPRequest("GET", "/api/me", 200, 4.0)
	}

	mf := findFamily(t, m, "pilotage_http_request_duration_seconds")
	p50 := histogramPercentile(mf, 0.50)
	p99 := histogramPercentile(mf, 0.99)
	if p50 > 0.1 {
		t.Errorf("p50 = %v, expected fast bucket", p50)
	}
	if p99 < 1.0 {
		t.Errorf("p99 = %v, expected slow bucket", p99)
	}
}
