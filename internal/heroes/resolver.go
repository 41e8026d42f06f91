// Package heroes resolves free-text hero names against the canonical hero
// table. Lookups go through a normalized comparison key so spelling variants
// like "Yu Zhong", "Yu-Zhong" and "yu zhong" all land on the same row.
package heroes

import "strings"

// defaultAliases maps community spellings to the normalized key of their
// canonical hero. An alias is only registered when its target exists in the
// hero index, so stale entries drop silently instead of creating dead links.
var defaultAliases = map[string]string{
	"popol and kupa": "popolandkupa",
	"popol & kupa":   "popolandkupa",
	"yi sun shin":    "yisunshin",
	"yss":            "yisunshin",
	"lapu lapu":      "lapulapu",
	"lapu-lapu":      "lapulapu",
	"x borg":         "xborg",
	"x-borg":         "xborg",
	"x.borg":         "xborg",
}

// NormalizeKey strips a name down to its comparison key: lowercase with every
// non-alphanumeric rune removed.
func NormalizeKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolver maps free-text hero names to canonical database names. It is
// immutable once built; construct a fresh one when the hero table changes.
type Resolver struct {
	keyToName map[string]string
	aliases   map[string]string
}

// ResolverBuilder assembles a Resolver in stages: the hero index first, then
// aliases validated against it.
type ResolverBuilder struct {
	keyToName map[string]string
}

// NewResolverBuilder indexes the canonical hero names.
func NewResolverBuilder(canonicalNames []string) *ResolverBuilder {
	index := make(map[string]string, len(canonicalNames))
	for _, name := range canonicalNames {
		index[NormalizeKey(name)] = name
	}
	return &ResolverBuilder{keyToName: index}
}

// WithDefaultAliases registers the built-in community alias table.
func (b *ResolverBuilder) WithDefaultAliases() *Resolver {
	return b.WithAliases(defaultAliases)
}

// WithAliases registers alias spellings and returns the finished Resolver.
// Each alias maps a raw spelling to the normalized key of its target; aliases
// whose target is not in the index are dropped.
func (b *ResolverBuilder) WithAliases(aliases map[string]string) *Resolver {
	resolved := make(map[string]string, len(aliases))
	for rawAlias, targetKey := range aliases {
		if canonical, ok := b.keyToName[targetKey]; ok {
			resolved[NormalizeKey(rawAlias)] = canonical
		}
	}
	return &Resolver{keyToName: b.keyToName, aliases: resolved}
}

// Resolve maps a raw name to its canonical database name.
// The boolean is false when the name is unknown; callers drop unresolved
// names rather than treating this as an error.
func (r *Resolver) Resolve(rawName string) (string, bool) {
	key := NormalizeKey(rawName)
	if canonical, ok := r.aliases[key]; ok {
		return canonical, true
	}
	canonical, ok := r.keyToName[key]
	return canonical, ok
}

// ResolveAll maps a list of raw names, silently dropping any that do not
// resolve. Order is preserved.
func (r *Resolver) ResolveAll(rawNames []string) []string {
	resolved := make([]string, 0, len(rawNames))
	for _, raw := range rawNames {
		if canonical, ok := r.Resolve(raw); ok {
			resolved = append(resolved, canonical)
		}
	}
	return resolved
}

// Known reports whether a raw name resolves.
func (r *Resolver) Known(rawName string) bool {
	_, ok := r.Resolve(rawName)
	return ok
}
