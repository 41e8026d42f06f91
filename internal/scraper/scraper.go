package scraper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// HeroTarget is one hero page to scrape.
type HeroTarget struct {
	Name string
	URL  string
}

// ParseHeroList reads scrape targets from a hand-maintained list. Accepted
// line shapes:
//
//	https://example.com/heroes/atlas/
//	Atlas | https://example.com/heroes/atlas/
//	Atlas|https://example.com/heroes/atlas/
//
// Blank lines and #-comments are skipped. Names omitted from the line are
// derived from the URL slug.
func ParseHeroList(r io.Reader) ([]HeroTarget, error) {
	var targets []HeroTarget
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var t HeroTarget
		if i := strings.Index(line, "|"); i >= 0 {
			t.Name = strings.TrimSpace(line[:i])
			t.URL = strings.TrimSpace(line[i+1:])
		} else {
			t.URL = line
		}
		if t.URL == "" {
			continue
		}
		if t.Name == "" {
			t.Name = nameFromURL(t.URL)
		}
		if t.Name == "" {
			continue
		}
		targets = append(targets, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hero list: %w", err)
	}
	return targets, nil
}

func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	slug := segments[len(segments)-1]
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// Scraper syncs hero pages and counter relations into the store.
type Scraper struct {
	fetcher  *Fetcher
	heroes   repository.HeroRepository
	counters repository.CounterRepository
	logger   *zap.Logger
}

// New creates a scraper over the given repositories.
func New(fetcher *Fetcher, heroes repository.HeroRepository, counters repository.CounterRepository, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetcher: fetcher, heroes: heroes, counters: counters, logger: logger}
}

// SyncHero fetches one hero page and replaces the hero row and its counter
// relations wholesale.
func (s *Scraper) SyncHero(ctx context.Context, target HeroTarget) error {
	doc, err := s.fetcher.FetchDocument(ctx, target.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", target.Name, err)
	}

	page := ParseHeroPage(doc)
	hero := &models.Hero{
		Name:      target.Name,
		URL:       target.URL,
		Role:      page.Role,
		Lane:      page.Lane,
		Specialty: page.Specialty,
		WinRate:   page.WinRate,
		Tier:      page.Tier,
	}
	if err := s.heroes.Upsert(ctx, hero); err != nil {
		return fmt.Errorf("failed to store %s: %w", target.Name, err)
	}
	if err := s.counters.ReplaceForHero(ctx, target.Name, page.StrongAgainst, page.WeakAgainst); err != nil {
		return fmt.Errorf("failed to store counters for %s: %w", target.Name, err)
	}

	s.logger.Info("hero synced",
		zap.String("hero", target.Name),
		zap.Int("strong_against", len(page.StrongAgainst)),
		zap.Int("weak_against", len(page.WeakAgainst)))
	return nil
}

// SyncAll syncs every target, continuing past per-hero failures. Returns the
// number synced and the number failed.
func (s *Scraper) SyncAll(ctx context.Context, targets []HeroTarget) (synced, failed int) {
	for _, target := range targets {
		if ctx.Err() != nil {
			return synced, failed + (len(targets) - synced - failed)
		}
		if err := s.SyncHero(ctx, target); err != nil {
			failed++
			s.logger.Warn("hero sync failed",
				zap.String("hero", target.Name),
				zap.Error(err))
			continue
		}
		synced++
	}
	return synced, failed
}

// SyncRanks fetches the official rank table and merges its win/pick/ban rates
// into the meta document at metaPath.
func (s *Scraper) SyncRanks(ctx context.Context, rankURL, metaPath string) (int, error) {
	doc, err := s.fetcher.FetchDocument(ctx, rankURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rank table: %w", err)
	}
	rows := ParseRankTable(doc)
	if len(rows) == 0 {
		return 0, fmt.Errorf("no rank rows recognized at %s", rankURL)
	}
	updated, err := MergeIntoMeta(metaPath, rows)
	if err != nil {
		return 0, err
	}
	s.logger.Info("rank statistics merged",
		zap.Int("rows", len(rows)),
		zap.Int("updated", updated))
	return updated, nil
}
