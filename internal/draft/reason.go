package draft

import (
	"fmt"
	"sort"
	"strings"
)

// ReasonKind tags which signal produced a reason.
type ReasonKind string

const (
	ReasonCounterStrong ReasonKind = "counter_strong"
	ReasonCounterWeak   ReasonKind = "counter_weak"
	ReasonMeta          ReasonKind = "meta"
	ReasonTier          ReasonKind = "tier"
	ReasonPersonal      ReasonKind = "personal"
	ReasonMatchup       ReasonKind = "matchup"
)

// Reason is one itemized signal contribution to a candidate's score.
type Reason struct {
	Kind   ReasonKind `json:"kind"`
	Delta  float64    `json:"delta"`
	Detail string     `json:"detail"`
}

// surfaceThreshold suppresses near-zero contributions from cluttering
// explanations.
const surfaceThreshold = 0.01

// RenderExplanation compresses a reason list into one bounded summary line.
// Reasons are ranked by absolute delta, the top maxReasons kept, and each
// rendered with its signed delta at three decimals.
func RenderExplanation(reasons []Reason, maxReasons int) string {
	if len(reasons) == 0 {
		return "No strong signals detected (neutral pick)."
	}
	sorted := make([]Reason, len(reasons))
	copy(sorted, reasons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].Delta) > abs(sorted[j].Delta)
	})
	if maxReasons > 0 && len(sorted) > maxReasons {
		sorted = sorted[:maxReasons]
	}
	parts := make([]string, 0, len(sorted))
	for _, r := range sorted {
		sign := ""
		if r.Delta >= 0 {
			sign = "+"
		}
		parts = append(parts, fmt.Sprintf("%s (%s%.3f)", r.Detail, sign, r.Delta))
	}
	return strings.Join(parts, "; ")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
