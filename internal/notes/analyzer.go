// Package notes extracts recurring patterns from the user's freeform game
// notes: repeated mistakes, matchup trouble spots, and positive learnings.
// Everything is local keyword and pattern matching over the logged history.
package notes

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// Insight categories.
const (
	CategoryMistake  = "mistake"
	CategoryMatchup  = "matchup"
	CategoryLearning = "learning"
)

// Insight is one extracted observation with its supporting evidence.
type Insight struct {
	Category   string   `json:"category"`
	Hero       string   `json:"hero"`
	Insight    string   `json:"insight"`
	Confidence float64  `json:"confidence"` // 0-1, scaled by occurrence count
	Evidence   []string `json:"evidence"`
	Frequency  int      `json:"frequency"`
}

// Recommendation is one prioritized action item from the full report.
type Recommendation struct {
	Priority       string `json:"priority"` // HIGH, MEDIUM or LOW
	Type           string `json:"type"`
	Hero           string `json:"hero"`
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact"`
}

// Report is the full analysis output.
type Report struct {
	TotalNotes         int              `json:"total_notes"`
	Heroes             []string         `json:"heroes"`
	Mistakes           []Insight        `json:"mistakes"`
	Matchups           []Insight        `json:"matchups"`
	Learnings          []Insight        `json:"learnings"`
	TopRecommendations []Recommendation `json:"top_recommendations"`
}

// minNoteLength filters out throwaway notes.
const minNoteLength = 10

var mistakePatterns = map[string][]*regexp.Regexp{
	"early_trade": compileAll(
		`traded? too early`,
		`without level \d`,
		`before level \d`,
		`rushed? level`,
		`ignored? (?:his|her|their) damage`,
	),
	"forgot": compileAll(
		`forgot`,
		`didn't remember`,
		`should have remembered`,
		`keep forgetting`,
	),
	"positioning": compileAll(
		`bad position`,
		`wrong position`,
		`got caught`,
		`out of position`,
	),
	"timing": compileAll(
		`too late`,
		`too soon`,
		`bad timing`,
		`wrong time`,
	),
	"spell_usage": compileAll(
		`wasted? (?:spell|skill)`,
		`used? .* too early`,
		`(?:spell|skill) on cooldown`,
	),
}

var learningPatterns = map[string][]*regexp.Regexp{
	"power_spike": compileAll(
		`level \d+ (?:power|spike|advantage)`,
		`strong at level`,
		`wait for level`,
	),
	"counter_play": compileAll(
		`counter`,
		`can beat`,
		`weak against`,
		`strong against`,
	),
	"strategy": compileAll(
		`(?:good|better) to`,
		`should (?:have )?`,
		`learned? that`,
		`realized? that`,
	),
}

var mistakeRecommendations = map[string]string{
	"early_trade": "Avoid trading aggressively before power spikes. Wait for level advantage.",
	"forgot":      "Create mental checklist: enemy abilities, cooldowns, ranges.",
	"positioning": "Improve map awareness. Position behind tanks in team fights.",
	"timing":      "Practice ability timing in training mode. Watch replays to study timing.",
	"spell_usage": "Save key spells for critical moments. Don't waste on minions.",
}

var threatWords = []string{
	"dangerous", "strong", "hard", "difficult", "problematic",
	"struggle", "struggled", "trouble", "pain", "annoying",
}

var successWords = []string{
	"good", "great", "dominated", "easy", "won", "outplayed",
	"perfect", "excellent", "strong", "advantage",
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Analyzer scans logged notes for insights. Build once and reuse; the word
// automatons are immutable.
type Analyzer struct {
	history repository.HistoryRepository
	threat  *ahocorasick.Automaton
	success *ahocorasick.Automaton
}

// NewAnalyzer builds the analyzer with its keyword automatons.
func NewAnalyzer(history repository.HistoryRepository) (*Analyzer, error) {
	threat, err := buildAutomaton(threatWords)
	if err != nil {
		return nil, fmt.Errorf("failed to build threat matcher: %w", err)
	}
	success, err := buildAutomaton(successWords)
	if err != nil {
		return nil, fmt.Errorf("failed to build success matcher: %w", err)
	}
	return &Analyzer{history: history, threat: threat, success: success}, nil
}

func buildAutomaton(words []string) (*ahocorasick.Automaton, error) {
	return ahocorasick.NewBuilder().
		AddStrings(words).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
}

// countDistinct counts how many distinct dictionary words occur in text.
func countDistinct(ac *ahocorasick.Automaton, text string) int {
	seen := map[int]bool{}
	for _, m := range ac.FindAllOverlapping([]byte(text)) {
		seen[m.PatternID] = true
	}
	return len(seen)
}

// Analyze builds the full report. hero filters to one hero when non-empty.
func (a *Analyzer) Analyze(ctx context.Context, hero string) (*Report, error) {
	records, err := a.history.ListWithNotes(ctx, hero, minNoteLength)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalNotes: len(records),
		Heroes:     distinctHeroes(records),
		Mistakes:   sortInsights(a.extractMistakes(records)),
		Matchups:   sortInsights(a.extractMatchupInsights(records)),
		Learnings:  sortInsights(a.extractLearnings(records)),
	}
	report.TopRecommendations = topRecommendations(report.Mistakes, report.Matchups, report.Learnings)
	return report, nil
}

func (a *Analyzer) extractMistakes(records []*models.GameRecord) []Insight {
	var insights []Insight
	for hero, heroRecords := range groupByHero(records) {
		findings := map[string][]string{}
		for _, rec := range heroRecords {
			text := strings.ToLower(noteText(rec))
			for mistakeType, patterns := range mistakePatterns {
				for _, p := range patterns {
					if p.MatchString(text) {
						findings[mistakeType] = append(findings[mistakeType], noteText(rec))
						break // count each note once per type
					}
				}
			}
		}
		for mistakeType, occurrences := range findings {
			if len(occurrences) < 2 {
				continue
			}
			insights = append(insights, Insight{
				Category:   CategoryMistake,
				Hero:       hero,
				Insight:    mistakeRecommendation(mistakeType),
				Confidence: clamp01(float64(len(occurrences)) / 5.0),
				Evidence:   firstN(occurrences, 3),
				Frequency:  len(occurrences),
			})
		}
	}
	return insights
}

func mistakeRecommendation(mistakeType string) string {
	if rec, ok := mistakeRecommendations[mistakeType]; ok {
		return rec
	}
	return fmt.Sprintf("Review %s pattern in notes", mistakeType)
}

func (a *Analyzer) extractMatchupInsights(records []*models.GameRecord) []Insight {
	type matchupData struct {
		hero, enemy  string
		wins, losses int
		notes        []string
	}
	matchups := map[string]*matchupData{}
	var order []string

	for _, rec := range records {
		for _, enemy := range rec.Enemies {
			key := rec.Hero + "\x00" + enemy
			m := matchups[key]
			if m == nil {
				m = &matchupData{hero: rec.Hero, enemy: enemy}
				matchups[key] = m
				order = append(order, key)
			}
			m.notes = append(m.notes, strings.ToLower(noteText(rec)))
			if rec.Won() {
				m.wins++
			} else {
				m.losses++
			}
		}
	}

	var insights []Insight
	for _, key := range order {
		m := matchups[key]
		total := m.wins + m.losses
		if total < 2 {
			continue
		}
		combined := strings.Join(m.notes, " ")
		threatCount := countDistinct(a.threat, combined)
		successCount := countDistinct(a.success, combined)
		winRate := float64(m.wins) / float64(total)

		switch {
		case threatCount >= 2 || winRate < 0.4:
			text := fmt.Sprintf("Struggles vs %s: %dL-%dW. %s",
				m.enemy, m.losses, m.wins, struggleHint(combined))
			insights = append(insights, Insight{
				Category:   CategoryMatchup,
				Hero:       m.hero,
				Insight:    text,
				Confidence: clamp01(float64(total) / 5.0),
				Evidence:   firstN(m.notes, 2),
				Frequency:  total,
			})
		case successCount >= 2 || winRate > 0.6:
			text := fmt.Sprintf("Strong vs %s: %dW-%dL. Good matchup for %s.",
				m.enemy, m.wins, m.losses, m.hero)
			insights = append(insights, Insight{
				Category:   CategoryMatchup,
				Hero:       m.hero,
				Insight:    text,
				Confidence: clamp01(float64(total) / 5.0),
				Evidence:   firstN(m.notes, 2),
				Frequency:  total,
			})
		}
	}
	return insights
}

func struggleHint(combined string) string {
	switch {
	case strings.Contains(combined, "damage"):
		return "Enemy damage is problematic. Consider defensive items."
	case strings.Contains(combined, "range") || strings.Contains(combined, "distance"):
		return "Range/positioning issue. Play safer."
	case strings.Contains(combined, "level"):
		return "Level-dependent matchup. Respect power spikes."
	default:
		return "Review matchup fundamentals."
	}
}

func (a *Analyzer) extractLearnings(records []*models.GameRecord) []Insight {
	var insights []Insight
	for hero, heroRecords := range groupByHero(records) {
		findings := map[string][]string{}
		for _, rec := range heroRecords {
			text := strings.ToLower(noteText(rec))
			for learningType, patterns := range learningPatterns {
				for _, p := range patterns {
					if p.MatchString(text) {
						findings[learningType] = append(findings[learningType], noteText(rec))
						break
					}
				}
			}
		}
		for learningType, occurrences := range findings {
			var text string
			switch learningType {
			case "power_spike":
				text = fmt.Sprintf("Understands %s power spikes. Leverage level advantages.", hero)
			case "counter_play":
				text = fmt.Sprintf("Learning %s matchups effectively. Continue studying counters.", hero)
			default:
				text = fmt.Sprintf("Developing %s strategy awareness.", hero)
			}
			insights = append(insights, Insight{
				Category:   CategoryLearning,
				Hero:       hero,
				Insight:    text,
				Confidence: 0.7,
				Evidence:   firstN(occurrences, 2),
				Frequency:  len(occurrences),
			})
		}
	}
	return insights
}

func topRecommendations(mistakes, matchups, learnings []Insight) []Recommendation {
	var out []Recommendation
	for _, m := range firstNInsights(mistakes, 3) {
		out = append(out, Recommendation{
			Priority:       "HIGH",
			Type:           "Mistake to Fix",
			Hero:           m.Hero,
			Recommendation: m.Insight,
			Impact:         fmt.Sprintf("Seen %dx - %d%% confidence", m.Frequency, int(m.Confidence*100)),
		})
	}
	for _, m := range firstNInsights(matchups, 2) {
		if !strings.HasPrefix(m.Insight, "Struggles") {
			continue
		}
		out = append(out, Recommendation{
			Priority:       "MEDIUM",
			Type:           "Matchup to Avoid/Practice",
			Hero:           m.Hero,
			Recommendation: m.Insight,
			Impact:         fmt.Sprintf("%d games noted", m.Frequency),
		})
	}
	for _, l := range firstNInsights(learnings, 1) {
		out = append(out, Recommendation{
			Priority:       "LOW",
			Type:           "Keep Improving",
			Hero:           l.Hero,
			Recommendation: l.Insight,
			Impact:         "Positive pattern",
		})
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func sortInsights(insights []Insight) []Insight {
	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Confidence != insights[j].Confidence {
			return insights[i].Confidence > insights[j].Confidence
		}
		if insights[i].Frequency != insights[j].Frequency {
			return insights[i].Frequency > insights[j].Frequency
		}
		return insights[i].Hero < insights[j].Hero
	})
	return insights
}

func groupByHero(records []*models.GameRecord) map[string][]*models.GameRecord {
	out := map[string][]*models.GameRecord{}
	for _, rec := range records {
		out[rec.Hero] = append(out[rec.Hero], rec)
	}
	return out
}

func distinctHeroes(records []*models.GameRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, rec := range records {
		if !seen[rec.Hero] {
			seen[rec.Hero] = true
			out = append(out, rec.Hero)
		}
	}
	sort.Strings(out)
	return out
}

func noteText(rec *models.GameRecord) string {
	if rec.Notes == nil {
		return ""
	}
	return *rec.Notes
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func firstNInsights(s []Insight, n int) []Insight {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func clamp01(f float64) float64 {
	if f > 1 {
		return 1
	}
	return f
}
