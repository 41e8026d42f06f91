// Package draft implements the hero recommendation engine. It blends counter
// relations (direct and inverse-inferred), scraped meta statistics, and the
// user's own match history into one weighted score per candidate, with an
// itemized explanation of every contribution.
package draft

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlcounter/draft-companion/internal/heroes"
	"github.com/mlcounter/draft-companion/internal/meta"
	"github.com/mlcounter/draft-companion/internal/metrics"
	"github.com/mlcounter/draft-companion/internal/stats"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// Request carries one recommendation query. Name lists accept free-text
// spellings; unresolvable names are dropped, never rejected.
//
// The zero value of each toggle is the recommended mode: inverse inference
// and personal history on, synergy off.
type Request struct {
	Pool      []string `json:"pool"`
	Enemies   []string `json:"enemies"`
	Teammates []string `json:"teammates,omitempty"`

	BaseScore  float64 `json:"base_score"`
	TopN       int     `json:"top_n"`
	MaxReasons int     `json:"max_reasons"`

	DisableInverse  bool `json:"disable_inverse,omitempty"`
	DisablePersonal bool `json:"disable_personal,omitempty"`

	// UseSynergy is accepted but currently inert: teammate synergy is a
	// reserved signal that always contributes zero.
	UseSynergy bool `json:"use_synergy,omitempty"`
}

// ScoredCandidate is one ranked recommendation.
type ScoredCandidate struct {
	Hero  string  `json:"hero"`
	Score float64 `json:"score"`

	StrongHits []string `json:"strong_hits"`
	WeakHits   []string `json:"weak_hits"`

	CounterBonus  float64 `json:"counter_bonus"`
	MetaBonus     float64 `json:"meta_bonus"`
	PersonalBonus float64 `json:"personal_bonus"`
	SynergyBonus  float64 `json:"synergy_bonus"`

	Reasons  []Reason `json:"reasons"`
	Explain  string   `json:"explain"`
	Warnings []string `json:"warnings,omitempty"`
	EarlyTip string   `json:"early_tip"`

	PersonalStats *models.HeroStats `json:"personal_stats,omitempty"`
}

// Response is the full result of one Recommend call. Warnings holds
// call-level degradations (missing meta document, missing history table),
// surfaced once each regardless of pool size.
type Response struct {
	Results  []*ScoredCandidate `json:"results"`
	Warnings []string           `json:"warnings,omitempty"`
}

// MetaSource serves scraped rank statistics to the scorer. Satisfied by both
// meta.Store and meta.Reloader.
type MetaSource interface {
	Lookup(heroName string) *meta.Entry
	Loaded() bool
}

// Engine scores draft candidates. It carries no per-call state, so one engine
// may serve concurrent Recommend calls.
type Engine struct {
	resolver *heroes.Resolver
	counters repository.CounterRepository
	history  repository.HistoryRepository
	meta     MetaSource
	weights  Weights
	log      *zap.Logger
	metrics  *metrics.EngineMetrics
}

// SetMetrics attaches a metrics collector. Must be called before the engine
// starts serving.
func (e *Engine) SetMetrics(m *metrics.EngineMetrics) { e.metrics = m }

// NewEngine builds an engine over the given stores. The hero name index and
// alias table are built here, once; construct a fresh engine after the hero
// table changes. history may be nil when no match logging exists at all.
func NewEngine(
	ctx context.Context,
	heroRepo repository.HeroRepository,
	counters repository.CounterRepository,
	history repository.HistoryRepository,
	metaStore MetaSource,
	weights Weights,
	log *zap.Logger,
) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	names, err := heroRepo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build hero index: %w", err)
	}
	if metaStore == nil {
		metaStore = &meta.Store{}
	}
	return &Engine{
		resolver: heroes.NewResolverBuilder(names).WithDefaultAliases(),
		counters: counters,
		history:  history,
		meta:     metaStore,
		weights:  weights,
		log:      log,
	}, nil
}

// Resolver exposes the engine's name resolver for callers that validate
// input names up front.
func (e *Engine) Resolver() *heroes.Resolver { return e.resolver }

// enemyRelations caches one enemy's own relation lists for inverse
// inference. Built once per Recommend call since enemies are shared across
// the whole candidate pool.
type enemyRelations struct {
	strong map[string]bool
	weak   map[string]bool
}

// Recommend scores every resolvable hero in the pool against the enemy list
// and returns them ranked by descending score, truncated to TopN after
// sorting. Only an unusable store aborts the call; every data gap degrades to
// a zero contribution instead.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if req.TopN <= 0 {
		req.TopN = 10
	}
	if req.MaxReasons <= 0 {
		req.MaxReasons = 3
	}

	pool := e.resolver.ResolveAll(req.Pool)
	enemies := e.resolver.ResolveAll(req.Enemies)

	resp := &Response{Results: []*ScoredCandidate{}}

	if !e.meta.Loaded() {
		resp.Warnings = append(resp.Warnings, "Meta statistics unavailable; meta signals skipped.")
	}

	usePersonal := !req.DisablePersonal && e.history != nil
	if usePersonal {
		ok, err := e.history.Available(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			usePersonal = false
			resp.Warnings = append(resp.Warnings, "No personal game history found; personal signals skipped.")
		}
	}

	var enemyCache map[string]*enemyRelations
	if !req.DisableInverse {
		var err error
		enemyCache, err = e.buildEnemyCache(ctx, enemies)
		if err != nil {
			return nil, err
		}
	}

	e.log.Debug("scoring pool",
		zap.Int("pool", len(pool)),
		zap.Int("enemies", len(enemies)),
		zap.Bool("personal", usePersonal),
		zap.Bool("inverse", !req.DisableInverse))

	for _, hero := range pool {
		cand, err := e.scoreCandidate(ctx, hero, enemies, enemyCache, req, usePersonal)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, cand)
	}

	// Stable sort so exact ties keep pool order; truncation strictly after.
	stableSortByScore(resp.Results)
	if len(resp.Results) > req.TopN {
		resp.Results = resp.Results[:req.TopN]
	}
	if e.metrics != nil {
		e.metrics.RecordRecommend(time.Since(start), len(pool))
	}
	return resp, nil
}

func (e *Engine) buildEnemyCache(ctx context.Context, enemies []string) (map[string]*enemyRelations, error) {
	cache := make(map[string]*enemyRelations, len(enemies))
	for _, enemy := range enemies {
		strong, err := e.counters.GetRelations(ctx, enemy, models.StrongAgainst)
		if err != nil {
			return nil, fmt.Errorf("failed to load relations for %s: %w", enemy, err)
		}
		weak, err := e.counters.GetRelations(ctx, enemy, models.WeakAgainst)
		if err != nil {
			return nil, fmt.Errorf("failed to load relations for %s: %w", enemy, err)
		}
		cache[enemy] = &enemyRelations{
			strong: nameSet(strong),
			weak:   nameSet(weak),
		}
	}
	return cache, nil
}

func (e *Engine) scoreCandidate(
	ctx context.Context,
	hero string,
	enemies []string,
	enemyCache map[string]*enemyRelations,
	req Request,
	usePersonal bool,
) (*ScoredCandidate, error) {
	cand := &ScoredCandidate{Hero: hero}

	strongDirect, err := e.counters.GetRelationHits(ctx, hero, enemies, models.StrongAgainst)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters for %s: %w", hero, err)
	}
	weakDirect, err := e.counters.GetRelationHits(ctx, hero, enemies, models.WeakAgainst)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters for %s: %w", hero, err)
	}

	// Inverse inference: an enemy documented as weak against this hero makes
	// the hero an effective strong pick into it, and vice versa. Compensates
	// for matchups the source only documented from one side.
	var strongInverse, weakInverse []string
	for _, enemy := range enemies {
		rel := enemyCache[enemy]
		if rel == nil {
			continue
		}
		if rel.weak[hero] {
			strongInverse = append(strongInverse, enemy)
		}
		if rel.strong[hero] {
			weakInverse = append(weakInverse, enemy)
		}
	}

	cand.StrongHits = dedup(strongDirect, strongInverse)
	cand.WeakHits = dedup(weakDirect, weakInverse)

	cand.CounterBonus = float64(len(cand.StrongHits))*e.weights.StrongHit +
		float64(len(cand.WeakHits))*e.weights.WeakHit

	if len(cand.StrongHits) > 0 {
		cand.Reasons = append(cand.Reasons, Reason{
			Kind:   ReasonCounterStrong,
			Delta:  float64(len(cand.StrongHits)) * e.weights.StrongHit,
			Detail: hitDetail("Strong vs", cand.StrongHits, len(strongDirect) > 0, len(strongInverse) > 0),
		})
	}
	if len(cand.WeakHits) > 0 {
		cand.Reasons = append(cand.Reasons, Reason{
			Kind:   ReasonCounterWeak,
			Delta:  float64(len(cand.WeakHits)) * e.weights.WeakHit,
			Detail: hitDetail("Weak vs", cand.WeakHits, len(weakDirect) > 0, len(weakInverse) > 0),
		})
	}

	e.applyMetaSignal(cand)

	if usePersonal {
		if err := e.applyPersonalSignal(ctx, cand, enemies); err != nil {
			return nil, err
		}
	} else {
		cand.PersonalStats = stats.HeroAggregate(hero, nil, e.weights.MinGamesConfidence)
	}

	// Teammate synergy is a reserved seam: accepted, never computed.
	cand.SynergyBonus = 0

	cand.Score = round3(req.BaseScore + cand.CounterBonus + cand.MetaBonus + cand.PersonalBonus + cand.SynergyBonus)
	cand.CounterBonus = round3(cand.CounterBonus)
	cand.MetaBonus = round3(cand.MetaBonus)
	cand.PersonalBonus = round3(cand.PersonalBonus)
	cand.Explain = RenderExplanation(cand.Reasons, req.MaxReasons)
	return cand, nil
}

func (e *Engine) applyMetaSignal(cand *ScoredCandidate) {
	cand.EarlyTip = "Tactical analysis pending."
	entry := e.meta.Lookup(cand.Hero)
	if entry == nil {
		return
	}
	cand.EarlyTip = entry.Tip()

	if win, ok := entry.WinRate.Value(); ok {
		bonus := (win - 50.0) * e.weights.Win
		cand.MetaBonus += bonus
		if abs(bonus) > surfaceThreshold {
			cand.Reasons = append(cand.Reasons, Reason{
				Kind:   ReasonMeta,
				Delta:  bonus,
				Detail: fmt.Sprintf("Win Rate %.2f%%", win),
			})
		}
	}
	if pick, ok := entry.PickRate.Value(); ok {
		bonus := pick * e.weights.Pick
		cand.MetaBonus += bonus
		if abs(bonus) > surfaceThreshold {
			cand.Reasons = append(cand.Reasons, Reason{
				Kind:   ReasonMeta,
				Delta:  bonus,
				Detail: fmt.Sprintf("Pick Rate %.2f%%", pick),
			})
		}
	}
	if ban, ok := entry.BanRate.Value(); ok {
		bonus := ban * e.weights.Ban
		cand.MetaBonus += bonus
		if abs(bonus) > surfaceThreshold {
			cand.Reasons = append(cand.Reasons, Reason{
				Kind:   ReasonMeta,
				Delta:  bonus,
				Detail: fmt.Sprintf("Ban Rate %.2f%%", ban),
			})
		}
	}

	tierBonus := entry.TierOrdinal() * e.weights.Tier
	cand.MetaBonus += tierBonus
	if abs(tierBonus) > surfaceThreshold {
		cand.Reasons = append(cand.Reasons, Reason{
			Kind:   ReasonTier,
			Delta:  tierBonus,
			Detail: fmt.Sprintf("Tier %s", strings.ToUpper(strings.TrimSpace(entry.Tier))),
		})
	}
}

func (e *Engine) applyPersonalSignal(ctx context.Context, cand *ScoredCandidate, enemies []string) error {
	records, err := e.history.ListByHero(ctx, cand.Hero)
	if err != nil {
		return fmt.Errorf("failed to load history for %s: %w", cand.Hero, err)
	}
	agg := stats.HeroAggregate(cand.Hero, records, e.weights.MinGamesConfidence)
	cand.PersonalStats = agg

	// Win-rate deviation needs at least 3 games. Below that the sample says
	// nothing.
	if agg.TotalGames >= 3 {
		bonus := (agg.WinRate - 50.0) * e.weights.PersonalWR
		cand.PersonalBonus += bonus
		if abs(bonus) > surfaceThreshold {
			cand.Reasons = append(cand.Reasons, Reason{
				Kind:   ReasonPersonal,
				Delta:  bonus,
				Detail: fmt.Sprintf("Personal Win Rate %.1f%% (%d games)", agg.WinRate, agg.TotalGames),
			})
		}
	}

	// Per-enemy matchup record, three-band thresholding at 40/60 with a
	// 2-game floor. Continuous scaling would look misleadingly precise at
	// these sample sizes.
	for _, enemy := range enemies {
		m := stats.MatchupAggregate(cand.Hero, enemy, records)
		if m == nil || m.Total < 2 {
			continue
		}
		switch {
		case m.WinRate >= 60:
			cand.PersonalBonus += e.weights.MatchupWin
			cand.Reasons = append(cand.Reasons, Reason{
				Kind:   ReasonMatchup,
				Delta:  e.weights.MatchupWin,
				Detail: fmt.Sprintf("Good matchup vs %s (%d-%d)", enemy, m.Wins, m.Losses),
			})
		case m.WinRate <= 40:
			cand.PersonalBonus += e.weights.MatchupLoss
			cand.Reasons = append(cand.Reasons, Reason{
				Kind:   ReasonMatchup,
				Delta:  e.weights.MatchupLoss,
				Detail: fmt.Sprintf("Bad matchup vs %s (%d-%d)", enemy, m.Wins, m.Losses),
			})
			cand.Warnings = append(cand.Warnings,
				fmt.Sprintf("Caution: %d-%d personal record vs %s", m.Wins, m.Losses, enemy))
		}
	}
	return nil
}

// dedup merges hit lists preserving discovery order; first occurrence wins.
func dedup(lists ...[]string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, list := range lists {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func hitDetail(prefix string, hits []string, direct, inverse bool) string {
	var src []string
	if direct {
		src = append(src, "direct")
	}
	if inverse {
		src = append(src, "inverse")
	}
	detail := fmt.Sprintf("%s %s", prefix, strings.Join(hits, ", "))
	if len(src) > 0 {
		detail += fmt.Sprintf(" (%s)", strings.Join(src, "/"))
	}
	return detail
}

func stableSortByScore(results []*ScoredCandidate) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
