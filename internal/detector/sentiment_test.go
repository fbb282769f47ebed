package detector

import (
	"reflect"
	"testing"
)

func TestSentimentTones(t *testing.T) {
	d := NewSentimentDetector()

	tests := []struct {
		name     string
		text     string
		wantTone string
	}{
		{"no hits", "the weather is cloudy today", "neutral"},
		{"positive dominant", "an excellent, reliable and innovative product", "positive"},
		{"negative dominant", "slow, buggy and frustrating to use", "negative"},
		{"balanced", "great product but expensive and slow", "mixed"},
		{"empty text", "", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			if got.Tone != tt.wantTone {
				t.Errorf("Detect(%q).Tone = %q, want %q", tt.text, got.Tone, tt.wantTone)
			}
		})
	}
}

func TestSentimentDeterministic(t *testing.T) {
	d := NewSentimentDetector()
	text := "Acme is a reliable and popular platform, though somewhat expensive."

	first := d.Detect(text)
	for i := 0; i < 5; i++ {
		again := d.Detect(text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestSentimentConfidenceBounds(t *testing.T) {
	d := NewSentimentDetector()

	// One hit in a short text still gets the confidence floor.
	got := d.Detect("ok")
	if got.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want floor 0.1", got.Confidence)
	}

	// Dense hits are capped at 1.
	got = d.Detect("excellent great best reliable trusted")
	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want cap 1", got.Confidence)
	}
}

func TestSentimentKeywords(t *testing.T) {
	d := NewSentimentDetector()
	got := d.Detect("Reliable, reliable and reliable. Also buggy.")

	want := []string{"reliable", "buggy"}
	if !reflect.DeepEqual(got.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", got.Keywords, want)
	}
}

func TestSentimentStripsTrailingPunctuation(t *testing.T) {
	d := NewSentimentDetector()
	got := d.Detect("The interface is intuitive!")
	if got.Tone != "positive" {
		t.Errorf("Tone = %q, want positive (punctuated keyword should match)", got.Tone)
	}
}
