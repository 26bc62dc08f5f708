package question

import "fmt"

// ReportThreshold is the answer count at which the results report unlocks.
const ReportThreshold = 300

// ReportAvailable reports whether the results report can be opened, based on
// the counter carried by q. It is recomputed on every call.
func ReportAvailable(q *Question) bool {
	return q != nil && q.TotalAnswered >= ReportThreshold
}

// DeriveProgress returns min(100, answered/milestone*100). It is only used
// when a payload omits progress; a delivered value is always kept as-is.
func DeriveProgress(answered, milestone int) float64 {
	if milestone <= 0 {
		return 0
	}
	p := float64(answered) / float64(milestone) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// ProgressFraction returns Progress scaled to 0.0-1.0 for progress bars.
func (q *Question) ProgressFraction() float64 {
	if q == nil {
		return 0
	}
	f := q.Progress / 100
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// ProgressLabel renders "answered / milestone".
func (q *Question) ProgressLabel() string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf("%d / %d", q.TotalAnswered, q.Milestone)
}
