package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mlcounter/draft-companion/internal/draft"
)

func sampleResponse() *draft.Response {
	return &draft.Response{
		Results: []*draft.ScoredCandidate{
			{
				Hero:       "Thamuz",
				Score:      6.25,
				StrongHits: []string{"Alpha"},
				Explain:    "Strong vs Alpha (direct) (+1.250)",
				EarlyTip:   "Rush boots early.",
				Reasons: []draft.Reason{
					{Kind: draft.ReasonCounterStrong, Delta: 1.25, Detail: "Strong vs Alpha (direct)"},
				},
			},
			{
				Hero:    "Argus",
				Score:   5.0,
				Explain: "No strong signals detected (neutral pick).",
			},
		},
		Warnings: []string{"Meta statistics unavailable; meta signals skipped."},
	}
}

func TestRecommendations(t *testing.T) {
	var buf bytes.Buffer
	Recommendations(&buf, sampleResponse())
	out := buf.String()

	for _, want := range []string{
		"1. Thamuz - 6.25",
		"2. Argus - 5.00",
		"Strong vs Alpha (direct) (+1.250)",
		"Tip: Rush boots early.",
		"! Meta statistics unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRecommendationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	Recommendations(&buf, &draft.Response{})

	if !strings.Contains(buf.String(), "No recommendations") {
		t.Errorf("expected empty-pool message, got %q", buf.String())
	}
}

func TestRecommendationsCompact(t *testing.T) {
	var buf bytes.Buffer
	RecommendationsCompact(&buf, sampleResponse())
	out := buf.String()

	if !strings.Contains(out, "Thamuz") || !strings.Contains(out, "Argus") {
		t.Fatalf("compact table missing heroes:\n%s", out)
	}
	if !strings.Contains(out, "Strong vs Alpha (direct)") {
		t.Errorf("compact table missing top reason:\n%s", out)
	}
	if !strings.Contains(out, "neutral") {
		t.Errorf("expected neutral marker for reasonless candidate:\n%s", out)
	}
	// Hit columns are counts, not slice dumps
	if strings.Contains(out, "[") || strings.Contains(out, "%!") {
		t.Errorf("hit columns should render as counts:\n%s", out)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("Yi Sun-shin the Admiral", 14); got != "Yi Sun-shin..." {
		t.Errorf("truncateString = %q", got)
	}
	if got := truncateString("Chou", 14); got != "Chou" {
		t.Errorf("truncateString short = %q", got)
	}
}
