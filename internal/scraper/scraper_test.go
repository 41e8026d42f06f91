package scraper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseHeroList(t *testing.T) {
	input := `
# counter site targets
https://example.com/heroes/atlas/
Popol and Kupa | https://example.com/heroes/popol-and-kupa/
X.Borg|https://example.com/heroes/x-borg/

https://example.com/heroes/yu-zhong/
`
	targets, err := ParseHeroList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseHeroList: %v", err)
	}
	want := []HeroTarget{
		{Name: "Atlas", URL: "https://example.com/heroes/atlas/"},
		{Name: "Popol and Kupa", URL: "https://example.com/heroes/popol-and-kupa/"},
		{Name: "X.Borg", URL: "https://example.com/heroes/x-borg/"},
		{Name: "Yu Zhong", URL: "https://example.com/heroes/yu-zhong/"},
	}
	if len(targets) != len(want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Errorf("targets[%d] = %+v, want %+v", i, targets[i], want[i])
		}
	}
}

func TestMergeIntoMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	seed := map[string]map[string]any{
		"Yi Sun-shin": {"tier": "S", "early_tips": "Farm fast."},
		"Thamuz":      {"tier": "A"},
	}
	data, _ := json.Marshal(seed)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rows := []RankRow{
		// Containment match: the official table drops the hyphen.
		{Hero: "Yi Sun-shin", WinRate: "54.10%", PickRate: "0.90%", BanRate: "2.00%"},
		{Hero: "Thamuz", WinRate: "52.00%", PickRate: "2.10%", BanRate: "4.00%"},
		{Hero: "Nobody", WinRate: "50.00%", PickRate: "1.00%", BanRate: "0%"},
	}
	updated, err := MergeIntoMeta(path, rows)
	if err != nil {
		t.Fatalf("MergeIntoMeta: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	yss := doc["Yi Sun-shin"]
	if yss["win_rate"] != "54.10%" || yss["ban_rate"] != "2.00%" {
		t.Errorf("Yi Sun-shin = %v", yss)
	}
	// Fields the rank table does not carry survive the merge.
	if yss["tier"] != "S" || yss["early_tips"] != "Farm fast." {
		t.Errorf("existing fields lost: %v", yss)
	}
	if _, ok := doc["Nobody"]; ok {
		t.Error("unmatched row should not create an entry")
	}
}
