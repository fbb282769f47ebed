package detector

import (
	"strings"
	"testing"
)

func TestDetectExactCaseInsensitive(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)
	got := d.Detect("Acme is great. acme ACME")
	if got.Exact != 3 {
		t.Errorf("Exact = %d, want 3", got.Exact)
	}
}

func TestDetectFuzzyThreshold(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)

	// "acne" is one substitution away: similarity 0.75, above threshold
	// but below 1, so it counts as fuzzy and not exact.
	got := d.Detect("Many people confuse it with Acne products")
	if got.Fuzzy != 1 {
		t.Errorf("Fuzzy = %d, want 1", got.Fuzzy)
	}
	if got.Exact != 0 {
		t.Errorf("Exact = %d, want 0", got.Exact)
	}
}

func TestDetectExactNotDoubleCountedAsFuzzy(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)
	got := d.Detect("Acme makes widgets")
	if got.Exact != 1 {
		t.Errorf("Exact = %d, want 1", got.Exact)
	}
	if got.Fuzzy != 0 {
		t.Errorf("Fuzzy = %d, want 0", got.Fuzzy)
	}
}

func TestDetectMultiWordBrand(t *testing.T) {
	d := NewBrandDetector("Acme Corp", 0.7)

	tests := []struct {
		name      string
		text      string
		wantExact int
	}{
		{"literal phrase", "Acme Corp builds tools", 1},
		{"extra whitespace", "Acme   Corp builds tools", 1},
		{"markdown link label", "See [AcmeCorp](https://acmecorp.com) for details", 1},
		{"no mention", "Rival Labs builds tools", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			if got.Exact != tt.wantExact {
				t.Errorf("Detect(%q).Exact = %d, want %d", tt.text, got.Exact, tt.wantExact)
			}
		})
	}
}

func TestDetectContextsCapped(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Acme ships a product every quarter without fail. ")
	}
	got := d.Detect(sb.String())

	if len(got.Contexts) > 5 {
		t.Errorf("len(Contexts) = %d, want <= 5", len(got.Contexts))
	}
	if len(got.Contexts) == 0 {
		t.Error("expected at least one context")
	}
}

func TestDetectContextsDeduplicated(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)
	got := d.Detect("Acme is here. Acme is here. Acme is here.")

	seen := make(map[string]bool)
	for _, c := range got.Contexts {
		if seen[c] {
			t.Errorf("duplicate context %q", c)
		}
		seen[c] = true
	}
}

func TestDetectEmptyInputs(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)
	got := d.Detect("")
	if got.Exact != 0 || got.Fuzzy != 0 {
		t.Errorf("empty text: got exact=%d fuzzy=%d, want zeros", got.Exact, got.Fuzzy)
	}

	empty := NewBrandDetector("", 0.7)
	got = empty.Detect("some text")
	if got.Exact != 0 || got.Fuzzy != 0 {
		t.Errorf("empty brand: got exact=%d fuzzy=%d, want zeros", got.Exact, got.Fuzzy)
	}
}

func TestDetectWordBoundary(t *testing.T) {
	d := NewBrandDetector("Acme", 0.7)
	got := d.Detect("Acmeology is not the brand")
	if got.Exact != 0 {
		t.Errorf("Exact = %d, want 0 for substring inside a longer word", got.Exact)
	}
}
