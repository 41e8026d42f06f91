package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RankRow is one hero's row from the official rank statistics table.
type RankRow struct {
	Hero     string
	WinRate  string
	PickRate string
	BanRate  string
}

// ParseRankTable mines rank rows out of the official statistics page. The
// layout churns between seasons, so instead of fixed selectors this walks
// every row-ish element and keeps those shaped like
// [rank, name, win%, pick%, ban%].
func ParseRankTable(doc *goquery.Document) []RankRow {
	var rows []RankRow
	seen := map[string]bool{}

	doc.Find("tr, div, li").Each(func(_ int, row *goquery.Selection) {
		parts := textParts(row)
		if len(parts) < 4 || !strings.Contains(parts[2], "%") {
			return
		}
		name := cleanText(parts[1])
		if name == "" || seen[strings.ToLower(name)] {
			return
		}
		seen[strings.ToLower(name)] = true

		r := RankRow{
			Hero:     name,
			WinRate:  parts[2],
			PickRate: parts[3],
			BanRate:  "0%",
		}
		if len(parts) > 4 {
			r.BanRate = parts[4]
		}
		rows = append(rows, r)
	})
	return rows
}

// textParts splits an element into the texts of its direct children,
// mirroring a cell-by-cell read of a table row.
func textParts(sel *goquery.Selection) []string {
	var parts []string
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		if t := cleanText(child.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return parts
}

// MergeIntoMeta folds rank rows into the meta document at path, preserving
// fields the rank table does not carry (tier, tips). Row names are matched
// against document keys case-insensitively by containment, since the official
// table and the counter site disagree on spellings. Returns how many entries
// were updated.
func MergeIntoMeta(path string, rows []RankRow) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read meta document: %w", err)
	}

	var doc map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse meta document: %w", err)
	}

	updated := 0
	for _, row := range rows {
		key := matchKey(doc, row.Hero)
		if key == "" {
			continue
		}
		doc[key]["win_rate"] = row.WinRate
		doc[key]["pick_rate"] = row.PickRate
		doc[key]["ban_rate"] = row.BanRate
		updated++
	}

	out, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode meta document: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write meta document: %w", err)
	}
	return updated, nil
}

func matchKey(doc map[string]map[string]any, name string) string {
	lower := strings.ToLower(name)
	if _, ok := doc[name]; ok {
		return name
	}
	for key := range doc {
		if strings.Contains(strings.ToLower(key), lower) {
			return key
		}
	}
	return ""
}
