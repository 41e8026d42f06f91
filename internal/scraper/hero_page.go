package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HeroPage is everything extracted from one hero's counter page.
type HeroPage struct {
	Role          *string
	Lane          *string
	Specialty     *string
	WinRate       *float64
	Tier          *string
	StrongAgainst []string
	WeakAgainst   []string
}

// maxCounterHeroes caps how many heroes are read from one counter grid; the
// source layout shows five per section.
const maxCounterHeroes = 5

var (
	winRateRe = regexp.MustCompile(`(?i)win rate:\s*([0-9]+(?:\.[0-9]+)?)\s*%`)
	tierRe    = regexp.MustCompile(`Tier:\s*([A-Z][+\-]?)`)
	spacesRe  = regexp.MustCompile(`\s+`)
)

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// ParseHeroPage extracts role, lane, specialty, win rate, tier and both
// counter lists from a hero page document. Pages vary; every field is
// best-effort and nil/empty when absent.
func ParseHeroPage(doc *goquery.Document) *HeroPage {
	page := &HeroPage{}

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		raw := cleanText(p.Text())
		lower := strings.ToLower(raw)

		switch {
		case strings.HasPrefix(lower, "role:"):
			page.Role = afterColon(raw)
		case strings.HasPrefix(lower, "specialty:"):
			page.Specialty = afterColon(raw)
		case strings.HasPrefix(lower, "lane:"):
			page.Lane = afterColon(raw)
		case strings.Contains(lower, "win rate:"):
			if m := winRateRe.FindStringSubmatch(raw); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					page.WinRate = &v
				}
			}
			if m := tierRe.FindStringSubmatch(raw); m != nil {
				tier := m[1]
				page.Tier = &tier
			}
		}
	})

	page.WeakAgainst = extractCounters(doc, "is weak against")
	page.StrongAgainst = extractCounters(doc, "is strong against")
	return page
}

func afterColon(s string) *string {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	v := cleanText(parts[1])
	if v == "" {
		return nil
	}
	return &v
}

// extractCounters finds the heading paragraph containing needle and reads
// hero names from the first following figure grid that yields any. Pages
// sometimes repeat the heading in TOC blocks, so every occurrence is tried.
func extractCounters(doc *goquery.Document, needle string) []string {
	var heroes []string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(cleanText(p.Text())), needle) {
			return true
		}
		if found := heroesFromColumnsAfter(p); len(found) > 0 {
			heroes = found
			return false
		}
		return true
	})
	return heroes
}

// heroesFromColumnsAfter scans forward from a heading for a wp-block-columns
// grid with hero figures, climbing to the heading's ancestors when the grid
// is not a direct sibling.
func heroesFromColumnsAfter(heading *goquery.Selection) []string {
	node := heading
	for depth := 0; depth < 4 && node.Length() > 0; depth++ {
		var heroes []string
		node.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			grid := sib
			if !sib.HasClass("wp-block-columns") {
				grid = sib.Find("div.wp-block-columns").First()
			}
			if grid.Length() == 0 {
				return true
			}
			if found := heroesFromGrid(grid); len(found) > 0 {
				heroes = found
				return false
			}
			return true
		})
		if len(heroes) > 0 {
			return heroes
		}
		node = node.Parent()
	}
	return nil
}

// heroesFromGrid reads hero names out of figure blocks: figcaption link text
// first, then plain figcaption text, then the image alt attribute.
func heroesFromGrid(grid *goquery.Selection) []string {
	var heroes []string
	seen := map[string]bool{}

	grid.Find("figure").EachWithBreak(func(_ int, fig *goquery.Selection) bool {
		name := heroNameFromFigure(fig)
		if name == "" {
			return true
		}
		key := strings.ToLower(name)
		if seen[key] {
			return true
		}
		seen[key] = true
		heroes = append(heroes, name)
		return len(heroes) < maxCounterHeroes
	})
	return heroes
}

func heroNameFromFigure(fig *goquery.Selection) string {
	caption := fig.Find("figcaption").First()
	if caption.Length() > 0 {
		if link := caption.Find("a").First(); link.Length() > 0 {
			if name := cleanText(link.Text()); name != "" {
				return name
			}
		}
		if name := cleanText(caption.Text()); name != "" {
			return name
		}
	}
	if alt := cleanText(fig.Find("img").First().AttrOr("alt", "")); alt != "" {
		return alt
	}
	return ""
}
