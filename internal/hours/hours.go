// Package hours computes effective monthly quotas and progress summaries.
// Each month resolves independently: an override replaces the default for
// exactly one (user, month, year, app) tuple, with no carry-over.
package hours

// EffectiveQuota resolves the monthly hour target. override is the hours of
// a planning row for the exact tuple, or nil when none exists.
func EffectiveQuota(defaultHours int, override *int) int {
	if override != nil {
		return *override
	}
	return defaultHours
}

// Summary describes progress against an effective quota for one month.
type Summary struct {
	TotalHours     float64 `json:"totalHours"`
	Quota          int     `json:"monthlyHours"`
	RemainingHours float64 `json:"remainingHours"`
	Percentage     float64 `json:"percentage"`
	IsComplete     bool    `json:"isComplete"`
}

// Summarize computes the display metrics for totalHours logged against
// quota. Remaining never goes negative and the percentage is capped at 100.
// Quotas are validated positive at every entry point; a non-positive quota
// still yields 0% rather than dividing by zero.
func Summarize(totalHours float64, quota int) Summary {
	s := Summary{
		TotalHours: totalHours,
		Quota:      quota,
	}

	remaining := float64(quota) - totalHours
	if remaining > 0 {
		s.RemainingHours = remaining
	}

	if quota > 0 {
		pct := totalHours / float64(quota) * 100
		if pct > 100 {
			pct = 100
		}
		s.Percentage = pct
		s.IsComplete = totalHours >= float64(quota)
	}

	return s
}

// Sum adds hour values that were already parsed to numbers at the boundary.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// SummarizeByUser resolves each user's summary independently from their own
// effective quota. Admin views expose these per-user summaries, never a
// single blended total.
func SummarizeByUser(totals map[string]float64, quotas map[string]int) map[string]Summary {
	out := make(map[string]Summary, len(totals))
	for userID, total := range totals {
		out[userID] = Summarize(total, quotas[userID])
	}
	return out
}
