package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const heroPageHTML = `
<html><body>
<h1>Atlas</h1>
<p>Role: Tank</p>
<p>Specialty: Crowd Control</p>
<p>Lane: Roam</p>
<p>Win Rate: 51.34% | Tier: A+</p>

<p>Atlas is weak against the following heroes.</p>
<div class="wp-block-columns">
  <figure><img alt=""><figcaption><a href="/heroes/valir/">Valir</a></figcaption></figure>
  <figure><img alt=""><figcaption>Diggie</figcaption></figure>
  <figure><img alt="Wanwan"><figcaption></figcaption></figure>
</div>

<p>Atlas is strong against the following heroes.</p>
<div class="wp-block-columns">
  <figure><figcaption><a>Fanny</a></figcaption></figure>
  <figure><figcaption><a>Ling</a></figcaption></figure>
  <figure><figcaption><a>Fanny</a></figcaption></figure>
  <figure><figcaption><a>Lancelot</a></figcaption></figure>
  <figure><figcaption><a>Hayabusa</a></figcaption></figure>
  <figure><figcaption><a>Gusion</a></figcaption></figure>
  <figure><figcaption><a>Harley</a></figcaption></figure>
</div>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestParseHeroPage(t *testing.T) {
	page := ParseHeroPage(parseDoc(t, heroPageHTML))

	if page.Role == nil || *page.Role != "Tank" {
		t.Errorf("Role = %v, want Tank", page.Role)
	}
	if page.Specialty == nil || *page.Specialty != "Crowd Control" {
		t.Errorf("Specialty = %v, want Crowd Control", page.Specialty)
	}
	if page.Lane == nil || *page.Lane != "Roam" {
		t.Errorf("Lane = %v, want Roam", page.Lane)
	}
	if page.WinRate == nil || *page.WinRate != 51.34 {
		t.Errorf("WinRate = %v, want 51.34", page.WinRate)
	}
	if page.Tier == nil || *page.Tier != "A+" {
		t.Errorf("Tier = %v, want A+", page.Tier)
	}

	wantWeak := []string{"Valir", "Diggie", "Wanwan"}
	if len(page.WeakAgainst) != len(wantWeak) {
		t.Fatalf("WeakAgainst = %v, want %v", page.WeakAgainst, wantWeak)
	}
	for i := range wantWeak {
		if page.WeakAgainst[i] != wantWeak[i] {
			t.Errorf("WeakAgainst[%d] = %q, want %q", i, page.WeakAgainst[i], wantWeak[i])
		}
	}

	// Duplicates dropped, capped at five.
	if len(page.StrongAgainst) != 5 {
		t.Fatalf("StrongAgainst = %v, want 5 entries", page.StrongAgainst)
	}
	if page.StrongAgainst[0] != "Fanny" || page.StrongAgainst[4] != "Gusion" {
		t.Errorf("StrongAgainst = %v", page.StrongAgainst)
	}
}

func TestParseHeroPageMissingSections(t *testing.T) {
	page := ParseHeroPage(parseDoc(t, `<html><body><p>Some unrelated page.</p></body></html>`))
	if page.Role != nil || page.WinRate != nil || page.Tier != nil {
		t.Errorf("expected empty fields, got %+v", page)
	}
	if len(page.StrongAgainst) != 0 || len(page.WeakAgainst) != 0 {
		t.Errorf("expected no counters, got %v / %v", page.StrongAgainst, page.WeakAgainst)
	}
}

func TestParseHeroPageSkipsEmptyGrid(t *testing.T) {
	// The first heading occurrence (a TOC echo) has no usable grid; the
	// second does.
	html := `
<html><body>
<p>Atlas is weak against quick navigation</p>
<div class="wp-block-columns"><figure><img alt=""></figure></div>
<p>Atlas is weak against these heroes</p>
<div class="wp-block-columns">
  <figure><figcaption><a>Valir</a></figcaption></figure>
</div>
</body></html>`
	page := ParseHeroPage(parseDoc(t, html))
	if len(page.WeakAgainst) != 1 || page.WeakAgainst[0] != "Valir" {
		t.Errorf("WeakAgainst = %v, want [Valir]", page.WeakAgainst)
	}
}

const rankTableHTML = `
<html><body>
<table>
<tr><th>Rank</th><th>Hero</th><th>Win</th><th>Pick</th><th>Ban</th></tr>
<tr><td>1</td><td>Gloo</td><td>58.20%</td><td>1.12%</td><td>75.40%</td></tr>
<tr><td>2</td><td>Thamuz</td><td>53.15%</td><td>2.30%</td><td>5.10%</td></tr>
<tr><td>3</td><td>Miya</td><td>49.90%</td><td>8.00%</td></tr>
</table>
</body></html>`

func TestParseRankTable(t *testing.T) {
	rows := ParseRankTable(parseDoc(t, rankTableHTML))
	if len(rows) != 3 {
		t.Fatalf("rows = %v, want 3", rows)
	}
	if rows[0].Hero != "Gloo" || rows[0].WinRate != "58.20%" || rows[0].BanRate != "75.40%" {
		t.Errorf("row[0] = %+v", rows[0])
	}
	// Missing ban column defaults to zero.
	if rows[2].Hero != "Miya" || rows[2].BanRate != "0%" {
		t.Errorf("row[2] = %+v", rows[2])
	}
}

func TestParseRankTableIgnoresHeaderAndJunk(t *testing.T) {
	rows := ParseRankTable(parseDoc(t, rankTableHTML))
	for _, r := range rows {
		if r.Hero == "Hero" {
			t.Error("header row leaked into results")
		}
	}
}
