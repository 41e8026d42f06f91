package heroes

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple lowercase", "miya", "miya"},
		{"mixed case", "Thamuz", "thamuz"},
		{"internal space", "Yu Zhong", "yuzhong"},
		{"hyphenated", "Lapu-Lapu", "lapulapu"},
		{"punctuation", "X.Borg", "xborg"},
		{"ampersand", "Popol & Kupa", "popolkupa"},
		{"digits kept", "Hero2", "hero2"},
		{"surrounding whitespace", "  Chou  ", "chou"},
		{"non-breaking space", "Yu Zhong", "yuzhong"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func testResolver() *Resolver {
	names := []string{"Thamuz", "Argus", "Yi Sun-shin", "Lapu-Lapu", "X.Borg", "Popol and Kupa", "Yu Zhong"}
	return NewResolverBuilder(names).WithDefaultAliases()
}

func TestResolveCanonicalVariants(t *testing.T) {
	r := testResolver()

	tests := []struct {
		in   string
		want string
	}{
		{"Thamuz", "Thamuz"},
		{"thamuz", "Thamuz"},
		{"THAMUZ", "Thamuz"},
		{"Yi Sun-shin", "Yi Sun-shin"},
		{"yi sun shin", "Yi Sun-shin"},
		{"yss", "Yi Sun-shin"},
		{"x borg", "X.Borg"},
		{"X-Borg", "X.Borg"},
		{"xborg", "X.Borg"},
		{"popol & kupa", "Popol and Kupa"},
		{"lapu lapu", "Lapu-Lapu"},
		{"yu zhong", "Yu Zhong"},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.in)
		if !ok {
			t.Errorf("Resolve(%q): not found", tt.in)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	r := testResolver()
	if name, ok := r.Resolve("Nonexistent Hero"); ok {
		t.Errorf("Resolve returned %q for unknown name", name)
	}
	if r.Known("") {
		t.Error("empty name should not resolve")
	}
}

func TestAliasRequiresKnownTarget(t *testing.T) {
	// Alias pointing at a hero absent from the index must be dropped.
	r := NewResolverBuilder([]string{"Thamuz"}).WithAliases(map[string]string{
		"yss":  "yisunshin",
		"tham": "thamuz",
	})
	if _, ok := r.Resolve("yss"); ok {
		t.Error("alias with missing target should not resolve")
	}
	if got, ok := r.Resolve("tham"); !ok || got != "Thamuz" {
		t.Errorf("Resolve(tham) = %q, %v; want Thamuz, true", got, ok)
	}
}

func TestResolveAllPreservesOrderAndDrops(t *testing.T) {
	r := testResolver()
	got := r.ResolveAll([]string{"argus", "bogus", "yss", "thamuz"})
	want := []string{"Argus", "Yi Sun-shin", "Thamuz"}
	if len(got) != len(want) {
		t.Fatalf("ResolveAll = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveAll[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
