package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mlcounter/draft-companion/internal/draft"
	"github.com/mlcounter/draft-companion/internal/notes"
	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

func TestNewServer(t *testing.T) {
	cfg := DefaultConfig()

	server := NewServer(cfg, nil, nil)

	if server == nil {
		t.Fatal("NewServer returned nil")
	}

	if server.addr != cfg.ListenAddr {
		t.Errorf("Expected addr %s, got %s", cfg.ListenAddr, server.addr)
	}
}

func TestNewServer_NilConfig(t *testing.T) {
	server := NewServer(nil, nil, nil)

	if server == nil {
		t.Fatal("NewServer returned nil with nil config")
	}

	// Should use the default address
	if server.Addr() != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", server.Addr())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", cfg.ListenAddr)
	}
}

func TestServer_Shutdown_NotStarted(t *testing.T) {
	server := NewServer(nil, nil, nil)

	// Shutdown on a server that hasn't started should not error
	err := server.Shutdown(context.Background())
	if err != nil {
		t.Errorf("Expected no error on shutdown of non-started server, got %v", err)
	}
}

// newTestServer builds a server over a fresh in-memory store with a small
// seeded hero table.
func newTestServer(t *testing.T) (*Server, repository.HistoryRepository) {
	t.Helper()

	cfg := storage.DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	heroRepo := repository.NewHeroRepository(db.Conn())
	counterRepo := repository.NewCounterRepository(db.Conn())
	historyRepo := repository.NewHistoryRepository(db.Conn())
	sessionRepo := repository.NewSessionRepository(db.Conn())

	for _, name := range []string{"Thamuz", "Argus", "Alpha"} {
		if err := heroRepo.Upsert(ctx, &models.Hero{Name: name}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}
	if err := counterRepo.ReplaceForHero(ctx, "Thamuz", []string{"Alpha"}, nil); err != nil {
		t.Fatalf("seed counters: %v", err)
	}

	engine, err := draft.NewEngine(ctx, heroRepo, counterRepo, historyRepo, nil, draft.DefaultWeights(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	analyzer, err := notes.NewAnalyzer(historyRepo)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}

	server := NewServer(nil, &Deps{
		Engine:   engine,
		Heroes:   heroRepo,
		Counters: counterRepo,
		History:  historyRepo,
		Sessions: sessionRepo,
		Analyzer: analyzer,
	}, nil)

	return server, historyRepo
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestRecommendEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/draft/recommend", map[string]any{
		"pool":    []string{"Thamuz", "Argus"},
		"enemies": []string{"Alpha"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data draft.Response `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	results := envelope.Data.Results
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Hero != "Thamuz" {
		t.Errorf("expected Thamuz ranked first, got %s", results[0].Hero)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("expected strictly descending scores, got %f then %f", results[0].Score, results[1].Score)
	}
}

func TestRecommendEndpoint_EmptyPool(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/draft/recommend", map[string]any{
		"enemies": []string{"Alpha"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty pool, got %d", rec.Code)
	}
}

func TestContentTypeEnforcement(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/draft/recommend",
		bytes.NewBufferString(`{"pool":["Thamuz"]}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for non-JSON content type, got %d", rec.Code)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/history", map[string]any{
		"hero":    "Thamuz",
		"enemies": []string{"Alpha"},
		"result":  "Win",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data []*models.GameRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 record, got %d", len(envelope.Data))
	}
	if envelope.Data[0].Hero != "Thamuz" {
		t.Errorf("expected Thamuz, got %s", envelope.Data[0].Hero)
	}
}

func TestHistoryExport(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/history", map[string]any{
		"hero":    "Thamuz",
		"enemies": []string{"Alpha", "Balmond"},
		"result":  "Win",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/history/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Alpha|Balmond")) {
		t.Errorf("expected joined enemy column in CSV, got: %s", rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/history/export?format=json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for JSON export, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/history/export?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", rec.Code)
	}
}

func TestHistoryExportEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/history/export", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no history, got %d", rec.Code)
	}
}

func TestHistoryValidationError(t *testing.T) {
	server, _ := newTestServer(t)

	// No enemies: the repository rejects the record
	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/history", map[string]any{
		"hero":   "Thamuz",
		"result": "Win",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid record, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHeroLookupWithAlias(t *testing.T) {
	server, _ := newTestServer(t)

	// Resolver folds case and punctuation
	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/heroes/thamuz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data models.Hero `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode hero: %v", err)
	}
	if envelope.Data.Name != "Thamuz" {
		t.Errorf("expected canonical Thamuz, got %s", envelope.Data.Name)
	}
}

func TestHeroNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/heroes/nosuchhero", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCountersEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/heroes/Thamuz/counters", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Hero          string   `json:"hero"`
			StrongAgainst []string `json:"strong_against"`
			WeakAgainst   []string `json:"weak_against"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode counters: %v", err)
	}
	if len(envelope.Data.StrongAgainst) != 1 || envelope.Data.StrongAgainst[0] != "Alpha" {
		t.Errorf("expected strong_against [Alpha], got %v", envelope.Data.StrongAgainst)
	}
	if len(envelope.Data.WeakAgainst) != 0 {
		t.Errorf("expected empty weak_against, got %v", envelope.Data.WeakAgainst)
	}
}

func TestSessionLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data models.DraftSession `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	id := created.Data.ID

	rec = doJSON(t, handler, http.MethodPatch, "/api/v1/sessions/"+strconv.Itoa(id), map[string]any{
		"hero":    "Thamuz",
		"enemies": []string{"Alpha"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sessions/"+strconv.Itoa(id)+"/complete", map[string]any{
		"result":         "Win",
		"kills":          5,
		"deaths":         2,
		"assists":        7,
		"log_to_history": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on complete, got %d: %s", rec.Code, rec.Body.String())
	}

	var completed struct {
		Data struct {
			Session *models.DraftSession `json:"session"`
			Game    *models.GameRecord   `json:"game"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &completed); err != nil {
		t.Fatalf("decode completion: %v", err)
	}
	if completed.Data.Session.Status != models.SessionCompleted {
		t.Errorf("expected completed status, got %s", completed.Data.Session.Status)
	}
	if completed.Data.Game == nil || completed.Data.Game.Hero != "Thamuz" {
		t.Errorf("expected history record for Thamuz, got %+v", completed.Data.Game)
	}

	// No session should remain active
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sessions/active", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for active session, got %d", rec.Code)
	}
}

func TestStatsOverview(t *testing.T) {
	server, historyRepo := newTestServer(t)

	ctx := context.Background()
	for _, result := range []string{"Win", "Win", "Loss"} {
		err := historyRepo.Create(ctx, &models.GameRecord{
			Hero:    "Thamuz",
			Result:  result,
			Enemies: []string{"Alpha"},
		})
		if err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/stats/overview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			TotalGames int `json:"total_games"`
			Overall    struct {
				Wins   int `json:"wins"`
				Losses int `json:"losses"`
			} `json:"overall"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if envelope.Data.TotalGames != 3 {
		t.Errorf("expected 3 games, got %d", envelope.Data.TotalGames)
	}
	if envelope.Data.Overall.Wins != 2 || envelope.Data.Overall.Losses != 1 {
		t.Errorf("expected 2-1 record, got %d-%d", envelope.Data.Overall.Wins, envelope.Data.Overall.Losses)
	}
}

func TestChartsEndpoint(t *testing.T) {
	server, historyRepo := newTestServer(t)

	err := historyRepo.Create(context.Background(), &models.GameRecord{
		Hero:    "Thamuz",
		Result:  "Win",
		Enemies: []string{"Alpha"},
	})
	if err != nil {
		t.Fatalf("seed history: %v", err)
	}

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/charts/winrate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("expected HTML content type, got %s", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("echarts")) {
		t.Error("expected rendered chart markup in response body")
	}
}

func TestMetaStatus_NotConfigured(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/meta/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Loaded  bool `json:"loaded"`
			Entries int  `json:"entries"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if envelope.Data.Loaded || envelope.Data.Entries != 0 {
		t.Errorf("expected unloaded empty status, got %+v", envelope.Data)
	}
}
