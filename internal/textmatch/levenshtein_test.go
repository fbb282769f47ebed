package textmatch

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical", "acme", "acme", 0},
		{"empty both", "", "", 0},
		{"empty left", "", "abc", 3},
		{"empty right", "abc", "", 3},
		{"single substitution", "acme", "acne", 1},
		{"insertion", "acme", "acmes", 1},
		{"deletion", "acmes", "acme", 1},
		{"kitten sitting", "kitten", "sitting", 3},
		{"unicode", "café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := Distance(tt.a, tt.b); d != tt.expected {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, d, tt.expected)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"acme", "acne"},
		{"kitten", "sitting"},
		{"", "hello"},
	}
	for _, p := range pairs {
		if Distance(p[0], p[1]) != Distance(p[1], p[0]) {
			t.Errorf("Distance(%q, %q) not symmetric", p[0], p[1])
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "acme", "acme"},
		{"disjoint", "abcd", "wxyz"},
		{"partial", "acme corp", "acme"},
		{"empty one side", "", "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Similarity(tt.a, tt.b)
			if s < 0 || s > 1 {
				t.Errorf("Similarity(%q, %q) = %f, out of [0,1]", tt.a, tt.b, s)
			}
		})
	}
}

func TestSimilarityIdentity(t *testing.T) {
	if s := Similarity("acme", "acme"); s != 1 {
		t.Errorf("Similarity of identical strings = %f, want 1", s)
	}
	if s := Similarity("", ""); s != 1 {
		t.Errorf("Similarity of two empty strings = %f, want 1", s)
	}
}

func TestSimilarityValues(t *testing.T) {
	// one edit over four characters
	if s := Similarity("acme", "acne"); s != 0.75 {
		t.Errorf("Similarity(acme, acne) = %f, want 0.75", s)
	}
	if s := Similarity("abcd", "wxyz"); s != 0 {
		t.Errorf("Similarity(abcd, wxyz) = %f, want 0", s)
	}
}
