// Package meta loads the scraped per-hero rank statistics document
// (meta.json) and exposes normalized-key lookups over it. The document is
// optional: a missing or unreadable file yields an empty store and the engine
// degrades meta bonuses to zero.
package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mlcounter/draft-companion/internal/heroes"
)

// tierValues maps tier labels to their fixed scoring ordinals. Labels are
// matched after uppercasing and whitespace cleanup; anything unlisted scores
// zero.
var tierValues = map[string]float64{
	"S+": 1.5, "S": 1.2, "S-": 1.0,
	"A+": 0.8, "A": 0.6, "A-": 0.4,
	"B+": 0.2, "B": 0.0, "B-": -0.1,
	"C+": -0.2, "C": -0.3, "C-": -0.4,
	"PENDING ANALYSIS": 0.0,
}

// TierValue returns the scoring ordinal for a tier label, zero for
// unrecognized labels.
func TierValue(label string) float64 {
	return tierValues[strings.ToUpper(cleanText(label))]
}

var wsRe = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

var percentRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// Percent is a rate field that the scraped document stores inconsistently:
// sometimes a bare number, sometimes a string like "53.2%" or "Win 53.2 %".
// Nil means the field was absent or carried no parseable number.
type Percent struct {
	value float64
	valid bool
}

// Value returns the parsed percentage and whether one was present.
func (p Percent) Value() (float64, bool) { return p.value, p.valid }

func (p *Percent) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		p.value, p.valid = num, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Unexpected shape (object, array): treat as absent.
		return nil
	}
	m := percentRe.FindString(cleanText(s))
	if m == "" {
		return nil
	}
	if _, err := fmt.Sscanf(m, "%f", &p.value); err != nil {
		return nil
	}
	p.valid = true
	return nil
}

// Entry is one hero's scraped rank statistics. Every field is optional; the
// zero contribution policy for absent fields lives here and in the scorer,
// not scattered across callers.
type Entry struct {
	WinRate  Percent `json:"win_rate"`
	PickRate Percent `json:"pick_rate"`
	BanRate  Percent `json:"ban_rate"`
	Tier     string  `json:"tier"`
	EarlyTip string  `json:"early_tips"`
	// Some document versions use the singular key.
	EarlyTipAlt string `json:"early_tip"`
}

// Tip returns the early-game tip text, falling back to the default line when
// the document carries none.
func (e *Entry) Tip() string {
	if e.EarlyTip != "" {
		return e.EarlyTip
	}
	if e.EarlyTipAlt != "" {
		return e.EarlyTipAlt
	}
	return "Tactical analysis pending."
}

// TierOrdinal returns the scoring value of this entry's tier label.
func (e *Entry) TierOrdinal() float64 {
	return TierValue(e.Tier)
}

// Store holds the loaded document indexed by normalized hero key. Immutable
// after Load.
type Store struct {
	entries map[string]*Entry
	loaded  bool
}

// Load reads the meta document from path. A missing file is not an error:
// the returned store is empty and Loaded reports false so callers can surface
// a single warning.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{entries: map[string]*Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read meta document: %w", err)
	}
	return Parse(data)
}

// Parse builds a store from raw document bytes. An unparseable document is
// treated like a missing one.
func Parse(data []byte) (*Store, error) {
	var raw map[string]*Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return &Store{entries: map[string]*Entry{}}, nil
	}
	entries := make(map[string]*Entry, len(raw))
	for name, e := range raw {
		if e == nil {
			continue
		}
		entries[heroes.NormalizeKey(name)] = e
	}
	return &Store{entries: entries, loaded: true}, nil
}

// Loaded reports whether a document was actually read and parsed. False means
// every Lookup will miss and meta bonuses degrade to zero.
func (s *Store) Loaded() bool { return s.loaded }

// Len returns the number of hero entries.
func (s *Store) Len() int { return len(s.entries) }

// Lookup finds the entry for a hero by normalized-key match. Document keys
// often differ from canonical names in casing and punctuation.
func (s *Store) Lookup(heroName string) *Entry {
	return s.entries[heroes.NormalizeKey(heroName)]
}
