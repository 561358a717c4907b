package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Summary is a human-readable snapshot of server health, served as JSON
// alongside the Prometheus exposition endpoint.
type Summary struct {
	UptimeSeconds       float64 `json:"uptime_seconds"`
	HTTPRequestsTotal   float64 `json:"http_requests_total"`
	HTTPErrorRate       float64 `json:"http_error_rate"`
	HTTPP95Latency      float64 `json:"http_p95_latency_seconds"`
	AuthSuccessesTotal  float64 `json:"auth_successes_total"`
	AuthFailuresTotal   float64 `json:"auth_failures_total"`
	ThrottleRejections  float64 `json:"login_throttle_rejections_total"`
	RecapRunsSucceeded  float64 `json:"recap_runs_succeeded"`
	RecapRunsFailed     float64 `json:"recap_runs_failed"`
	RecapEmailsTotal    float64 `json:"recap_emails_total"`
	DBPoolAcquiredConns float64 `json:"db_pool_acquired_conns"`
	DBPoolTotalConns    float64 `json:"db_pool_total_conns"`
}

// SummaryHandler serves the JSON summary computed from the live registry.
func (m *Metrics) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		families, err := m.registry.Gather()
		if err != nil {
			http.Error(w, "gathering metrics failed", http.StatusInternalServerError)
			return
		}

		byName := make(map[string]*dto.MetricFamily, len(families))
		for _, mf := range families {
			byName[mf.GetName()] = mf
		}

		startTime := gaugeValue(byName["pilotage_server_start_time_seconds"])
		summary := Summary{
			HTTPRequestsTotal:   sumCounter(byName["pilotage_http_requests_total"]),
			HTTPErrorRate:       computeErrorRate(byName["pilotage_http_requests_total"]),
			HTTPP95Latency:      histogramPercentile(byName["pilotage_http_request_duration_seconds"], 0.95),
			AuthSuccessesTotal:  sumCounter(byName["pilotage_auth_successes_total"]),
			AuthFailuresTotal:   sumCounter(byName["pilotage_auth_failures_total"]),
			ThrottleRejections:  sumCounter(byName["pilotage_login_throttle_rejections_total"]),
			RecapRunsSucceeded:  counterWithLabel(byName["pilotage_recap_runs_total"], "status", "success"),
			RecapRunsFailed:     counterWithLabel(byName["pilotage_recap_runs_total"], "status", "error"),
			RecapEmailsTotal:    sumCounter(byName["pilotage_recap_emails_total"]),
			DBPoolAcquiredConns: gaugeValue(byName["pilotage_db_pool_acquired_conns"]),
			DBPoolTotalConns:    gaugeValue(byName["pilotage_db_pool_total_conns"]),
		}
		if startTime > 0 {
			summary.UptimeSeconds = float64(time.Now().Unix()) - startTime
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summary)
	}
}

// sumCounter adds up all series of a counter family.
func sumCounter(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}

// gaugeValue returns the value of a single-series gauge family.
func gaugeValue(mf *dto.MetricFamily) float64 {
	if mf == nil || len(mf.GetMetric()) == 0 {
		return 0
	}
	return mf.GetMetric()[0].GetGauge().GetValue()
}

// counterWithLabel sums counter series whose given label matches value.
func counterWithLabel(mf *dto.MetricFamily, label, value string) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

// computeErrorRate returns the share of requests whose status_code label
// is 5xx.
func computeErrorRate(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total, errors float64
	for _, m := range mf.GetMetric() {
		v := m.GetCounter().GetValue()
		total += v
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "status_code" && strings.HasPrefix(lp.GetValue(), "5") {
				errors += v
			}
		}
	}
	if total == 0 {
		return 0
	}
	return errors / total
}

// histogramPercentile estimates a percentile across all series of a
// histogram family with linear interpolation inside the bucket.
func histogramPercentile(mf *dto.MetricFamily, percentile float64) float64 {
	if mf == nil {
		return 0
	}

	// Merge buckets across series; they share the same boundaries.
	merged := make(map[float64]uint64)
	var totalCount uint64
	for _, m := range mf.GetMetric() {
		h := m.GetHistogram()
		totalCount += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			merged[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if totalCount == 0 {
		return 0
	}

	bounds := make([]float64, 0, len(merged))
	for ub := range merged {
		bounds = append(bounds, ub)
	}
	sort.Float64s(bounds)

	target := percentile * float64(totalCount)
	var prevBound float64
	var prevCount uint64
	for _, ub := range bounds {
		count := merged[ub]
		if float64(count) >= target {
			if count == prevCount {
				return ub
			}
			fraction := (target - float64(prevCount)) / float64(count-prevCount)
			return prevBound + fraction*(ub-prevBound)
		}
		prevBound = ub
		prevCount = count
	}
	return prevBound
}
