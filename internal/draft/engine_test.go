package draft

import (
	"context"
	"testing"

	"github.com/mlcounter/draft-companion/internal/meta"
	"github.com/mlcounter/draft-companion/internal/stats"
	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

type testStore struct {
	db       *storage.DB
	heroes   repository.HeroRepository
	counters repository.CounterRepository
	history  repository.HistoryRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	cfg := storage.DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &testStore{
		db:       db,
		heroes:   repository.NewHeroRepository(db.Conn()),
		counters: repository.NewCounterRepository(db.Conn()),
		history:  repository.NewHistoryRepository(db.Conn()),
	}
}

func (s *testStore) addHeroes(t *testing.T, names ...string) {
	t.Helper()
	ctx := context.Background()
	for _, name := range names {
		if err := s.heroes.Upsert(ctx, &models.Hero{Name: name}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}
}

func (s *testStore) addCounters(t *testing.T, hero string, strong, weak []string) {
	t.Helper()
	if err := s.counters.ReplaceForHero(context.Background(), hero, strong, weak); err != nil {
		t.Fatalf("counters for %s: %v", hero, err)
	}
}

func (s *testStore) addGame(t *testing.T, hero, result string, enemies ...string) {
	t.Helper()
	err := s.history.Create(context.Background(), &models.GameRecord{
		Hero:    hero,
		Result:  result,
		Enemies: enemies,
	})
	if err != nil {
		t.Fatalf("add game: %v", err)
	}
}

func (s *testStore) engine(t *testing.T, metaStore *meta.Store) *Engine {
	t.Helper()
	var src MetaSource
	if metaStore != nil {
		src = metaStore
	}
	e, err := NewEngine(context.Background(), s.heroes, s.counters, s.history, src, DefaultWeights(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestRecommendEndToEnd(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Argus", "Alpha")
	s.addCounters(t, "Thamuz", []string{"Alpha"}, nil)

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz", "Argus"},
		Enemies:         []string{"Alpha"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	thamuz, argus := resp.Results[0], resp.Results[1]
	if thamuz.Hero != "Thamuz" || argus.Hero != "Argus" {
		t.Fatalf("order = %s, %s; want Thamuz, Argus", thamuz.Hero, argus.Hero)
	}
	if thamuz.Score != 6.25 {
		t.Errorf("Thamuz score = %v, want 6.25", thamuz.Score)
	}
	if len(thamuz.StrongHits) != 1 || thamuz.StrongHits[0] != "Alpha" {
		t.Errorf("Thamuz strong hits = %v, want [Alpha]", thamuz.StrongHits)
	}
	if argus.Score != 5.0 {
		t.Errorf("Argus score = %v, want 5.0", argus.Score)
	}
	if len(argus.StrongHits) != 0 || len(argus.WeakHits) != 0 {
		t.Errorf("Argus hits = %v / %v, want none", argus.StrongHits, argus.WeakHits)
	}
	if argus.Explain != "No strong signals detected (neutral pick)." {
		t.Errorf("Argus explain = %q", argus.Explain)
	}
}

func TestRecommendEmptyEnemies(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Alpha")
	s.addCounters(t, "Thamuz", []string{"Alpha"}, nil)

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r := resp.Results[0]
	if r.CounterBonus != 0 || len(r.StrongHits) != 0 || len(r.WeakHits) != 0 {
		t.Errorf("empty enemies: bonus %v, hits %v/%v; want all zero", r.CounterBonus, r.StrongHits, r.WeakHits)
	}
}

func TestInverseInference(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Alpha")
	// Only the enemy side documents the matchup.
	s.addCounters(t, "Alpha", nil, []string{"Thamuz"})

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		Enemies:         []string{"Alpha"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r := resp.Results[0]
	if len(r.StrongHits) != 1 || r.StrongHits[0] != "Alpha" {
		t.Errorf("strong hits = %v, want [Alpha] via inverse", r.StrongHits)
	}
	if r.Score != 6.25 {
		t.Errorf("score = %v, want 6.25", r.Score)
	}

	// Inference off: the one-sided matchup disappears.
	resp, err = e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		Enemies:         []string{"Alpha"},
		BaseScore:       5.0,
		DisableInverse:  true,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results[0].StrongHits) != 0 {
		t.Errorf("strong hits with inverse disabled = %v, want none", resp.Results[0].StrongHits)
	}
}

func TestInverseDeduplication(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Alpha")
	// Both sides document the same matchup.
	s.addCounters(t, "Thamuz", []string{"Alpha"}, nil)
	s.addCounters(t, "Alpha", nil, []string{"Thamuz"})

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		Enemies:         []string{"Alpha"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r := resp.Results[0]
	if len(r.StrongHits) != 1 {
		t.Errorf("strong hits = %v, want Alpha exactly once", r.StrongHits)
	}
	if r.Score != 6.25 {
		t.Errorf("score = %v, want 6.25 (single counted hit)", r.Score)
	}
}

func TestContradictoryRelationsBothSurface(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Alpha")
	// The source asserts both directions for the same pair; neither is
	// reconciled away.
	s.addCounters(t, "Thamuz", []string{"Alpha"}, []string{"Alpha"})

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		Enemies:         []string{"Alpha"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r := resp.Results[0]
	if len(r.StrongHits) != 1 || len(r.WeakHits) != 1 {
		t.Errorf("hits = %v / %v, want Alpha in both lists", r.StrongHits, r.WeakHits)
	}
	if r.Score != 5.0 {
		t.Errorf("score = %v, want 5.0 (bonuses cancel)", r.Score)
	}
}

func TestMetaSignal(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz")

	metaStore, _ := meta.Parse([]byte(`{
		"Thamuz": {"win_rate": "55%", "pick_rate": "2.0%", "ban_rate": "1.0%", "tier": "S", "early_tips": "Play aggressive early."}
	}`))
	e := s.engine(t, metaStore)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r := resp.Results[0]
	// (55-50)*0.18 + 2*0.02 + 1*0.05 + 1.2*0.75 = 0.9 + 0.04 + 0.05 + 0.9
	if r.MetaBonus != 1.89 {
		t.Errorf("meta bonus = %v, want 1.89", r.MetaBonus)
	}
	if r.EarlyTip != "Play aggressive early." {
		t.Errorf("early tip = %q", r.EarlyTip)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", resp.Warnings)
	}
}

func TestMissingMetaWarnsOncePerCall(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Argus", "Martis")

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz", "Argus", "Martis"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", resp.Warnings)
	}
	for _, r := range resp.Results {
		if r.MetaBonus != 0 {
			t.Errorf("%s meta bonus = %v, want 0", r.Hero, r.MetaBonus)
		}
	}
}

func TestPersonalWinRateGate(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Alpha")

	e := s.engine(t, nil)
	ctx := context.Background()

	// Two games, 100% win rate: below the 3-game floor, contributes zero.
	s.addGame(t, "Thamuz", "Win", "Alpha")
	s.addGame(t, "Thamuz", "Win", "Alpha")
	resp, err := e.Recommend(ctx, Request{Pool: []string{"Thamuz"}, BaseScore: 5.0})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r := resp.Results[0]
	if r.PersonalBonus != 0 {
		t.Errorf("personal bonus below 3 games = %v, want 0", r.PersonalBonus)
	}
	if r.PersonalStats == nil || r.PersonalStats.Confidence != stats.ConfidenceLow {
		t.Errorf("personal stats = %+v, want low confidence", r.PersonalStats)
	}

	// Third win crosses the floor: (100-50)*0.08 = 4.0.
	s.addGame(t, "Thamuz", "Win", "Alpha")
	resp, err = e.Recommend(ctx, Request{Pool: []string{"Thamuz"}, BaseScore: 5.0})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	r = resp.Results[0]
	// Matchup bonus vs Alpha not in play: no enemies in this request.
	if r.PersonalBonus != 4.0 {
		t.Errorf("personal bonus = %v, want 4.0", r.PersonalBonus)
	}
}

func TestMatchupBands(t *testing.T) {
	tests := []struct {
		name        string
		results     []string // vs Alpha
		wantBonus   float64
		wantWarning bool
	}{
		{"one game only", []string{"Win"}, 0, false},
		{"50 percent band", []string{"Win", "Loss"}, 0, false},
		{"good matchup", []string{"Win", "Win", "Win"}, 1.5, false},
		{"bad matchup", []string{"Loss", "Loss", "Loss"}, -1.8, true},
		{"exactly 60 percent", []string{"Win", "Win", "Win", "Loss", "Loss"}, 1.5, false},
		{"exactly 40 percent", []string{"Win", "Win", "Loss", "Loss", "Loss"}, -1.8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			s.addHeroes(t, "Thamuz", "Alpha")
			for _, res := range tt.results {
				s.addGame(t, "Thamuz", res, "Alpha")
			}

			e := s.engine(t, nil)
			resp, err := e.Recommend(context.Background(), Request{
				Pool:    []string{"Thamuz"},
				Enemies: []string{"Alpha"},
			})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			r := resp.Results[0]

			// Subtract the overall win-rate deviation part to isolate the
			// matchup band contribution.
			wrPart := 0.0
			if len(tt.results) >= 3 {
				wins := 0
				for _, res := range tt.results {
					if res == "Win" {
						wins++
					}
				}
				wr := 100 * float64(wins) / float64(len(tt.results))
				wrPart = (wr - 50.0) * DefaultWeights().PersonalWR
			}
			got := round3(r.PersonalBonus - round3(wrPart))
			if got != tt.wantBonus {
				t.Errorf("matchup bonus = %v, want %v", got, tt.wantBonus)
			}
			if (len(r.Warnings) > 0) != tt.wantWarning {
				t.Errorf("warnings = %v, wantWarning = %v", r.Warnings, tt.wantWarning)
			}
		})
	}
}

func TestMissingHistoryTableWarnsOnce(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Argus")
	if _, err := s.db.Conn().Exec("DROP TABLE game_history"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:      []string{"Thamuz", "Argus"},
		BaseScore: 5.0,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// One warning for missing meta, one for missing history.
	if len(resp.Warnings) != 2 {
		t.Fatalf("warnings = %v, want two", resp.Warnings)
	}
	for _, r := range resp.Results {
		if r.PersonalBonus != 0 {
			t.Errorf("%s personal bonus = %v, want 0", r.Hero, r.PersonalBonus)
		}
		if r.PersonalStats == nil || r.PersonalStats.Confidence != stats.ConfidenceNone {
			t.Errorf("%s personal stats = %+v, want none confidence", r.Hero, r.PersonalStats)
		}
	}
}

func TestRankingStabilityOnTies(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Miya", "Layla", "Hanabi")

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Miya", "Layla", "Hanabi"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []string{"Miya", "Layla", "Hanabi"}
	for i, r := range resp.Results {
		if r.Hero != want[i] {
			t.Errorf("results[%d] = %s, want %s (pool order on ties)", i, r.Hero, want[i])
		}
	}
}

func TestTopNTruncationAfterSort(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Miya", "Layla", "Thamuz", "Alpha")
	s.addCounters(t, "Thamuz", []string{"Alpha"}, nil)

	e := s.engine(t, nil)
	// The highest scorer is last in the pool; top_n=1 must still return it.
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Miya", "Layla", "Thamuz"},
		Enemies:         []string{"Alpha"},
		BaseScore:       5.0,
		TopN:            1,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Hero != "Thamuz" {
		t.Errorf("results = %v, want just Thamuz", resp.Results)
	}
}

func TestUnresolvableNamesDropped(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz")

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz", "Totally Fake Hero"},
		Enemies:         []string{"Another Fake"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Hero != "Thamuz" {
		t.Errorf("results = %v, want just Thamuz", resp.Results)
	}
}

func TestEmptyPoolReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz")

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Nobody"},
		BaseScore:       5.0,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %v, want empty", resp.Results)
	}
}

func TestSynergyToggleIsInert(t *testing.T) {
	s := newTestStore(t)
	s.addHeroes(t, "Thamuz", "Tigreal")

	e := s.engine(t, nil)
	resp, err := e.Recommend(context.Background(), Request{
		Pool:            []string{"Thamuz"},
		Teammates:       []string{"Tigreal"},
		BaseScore:       5.0,
		UseSynergy:      true,
		DisablePersonal: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Results[0].SynergyBonus != 0 {
		t.Errorf("synergy bonus = %v, want 0", resp.Results[0].SynergyBonus)
	}
	if resp.Results[0].Score != 5.0 {
		t.Errorf("score = %v, want 5.0", resp.Results[0].Score)
	}
}
