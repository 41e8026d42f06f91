// Package display renders draft recommendations for terminal output.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/mlcounter/draft-companion/internal/draft"
)

// Recommendations writes the full ranked recommendation list with
// explanations, one block per candidate.
func Recommendations(w io.Writer, resp *draft.Response) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No recommendations: no resolvable heroes in the pool.")
		return
	}

	for _, warning := range resp.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}
	if len(resp.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Draft Recommendations\n")
	fmt.Fprintf(w, "=====================\n\n")

	for i, cand := range resp.Results {
		fmt.Fprintf(w, "%d. %s - %.2f\n", i+1, cand.Hero, cand.Score)
		fmt.Fprintf(w, "   %s\n", cand.Explain)
		if cand.EarlyTip != "" {
			fmt.Fprintf(w, "   Tip: %s\n", cand.EarlyTip)
		}
		for _, warning := range cand.Warnings {
			fmt.Fprintf(w, "   ! %s\n", warning)
		}
		fmt.Fprintln(w)
	}
}

// RecommendationsCompact writes the ranked list as a fixed-width table, one
// row per candidate.
func RecommendationsCompact(w io.Writer, resp *draft.Response) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No recommendations: no resolvable heroes in the pool.")
		return
	}

	for _, warning := range resp.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}

	fmt.Fprintf(w, "\n%-4s %-16s %-8s %-8s %-8s %s\n",
		"#", "Hero", "Score", "Strong", "Weak", "Top Reason")
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 72))

	for i, cand := range resp.Results {
		fmt.Fprintf(w, "%-4d %-16s %-8.2f %-8d %-8d %s\n",
			i+1,
			truncateString(cand.Hero, 14),
			cand.Score,
			len(cand.StrongHits),
			len(cand.WeakHits),
			truncateString(topReason(cand), 24),
		)
	}

	fmt.Fprintln(w)
}

// topReason returns the strongest explanation clause for the table view.
func topReason(cand *draft.ScoredCandidate) string {
	if len(cand.Reasons) == 0 {
		return "neutral"
	}
	best := cand.Reasons[0]
	for _, r := range cand.Reasons[1:] {
		if abs(r.Delta) > abs(best.Delta) {
			best = r
		}
	}
	return best.Detail
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// truncateString truncates a string to the specified length, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
