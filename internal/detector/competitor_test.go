package detector

import (
	"strings"
	"testing"

	"github.com/brandscope/brandscope/internal/models"
)

func TestCompetitorComparisonPhrasing(t *testing.T) {
	d := NewCompetitorDetector("Acme", nil)

	text := "Compared to Rival Labs, Acme offers better pricing. " +
		"Rival Labs is still popular in Europe."
	got := d.Detect(text, nil)

	if len(got) != 1 {
		t.Fatalf("got %d competitors, want 1: %+v", len(got), got)
	}
	if got[0].Name != "Rival Labs" {
		t.Errorf("Name = %q, want %q", got[0].Name, "Rival Labs")
	}
	if got[0].Count != 2 {
		t.Errorf("Count = %d, want 2", got[0].Count)
	}
}

func TestCompetitorOrgSuffix(t *testing.T) {
	d := NewCompetitorDetector("Acme", nil)

	got := d.Detect("Many teams rely on Widget Inc for this use case.", nil)
	if len(got) != 1 {
		t.Fatalf("got %d competitors, want 1: %+v", len(got), got)
	}
	if got[0].Name != "Widget Inc" {
		t.Errorf("Name = %q, want %q", got[0].Name, "Widget Inc")
	}
}

func TestCompetitorExcludesBrand(t *testing.T) {
	d := NewCompetitorDetector("Acme Corp", nil)

	got := d.Detect("Acme Corp is a leading platform in the space.", nil)
	for _, m := range got {
		if strings.EqualFold(m.Name, "Acme Corp") {
			t.Errorf("brand %q reported as its own competitor", m.Name)
		}
	}
}

func TestCompetitorStopWordFilter(t *testing.T) {
	d := NewCompetitorDetector("Acme", nil)

	// "The Best" starts with a stop word and must not survive mining.
	got := d.Detect("Compared to The Best Option you can find elsewhere.", nil)
	for _, m := range got {
		if strings.HasPrefix(strings.ToLower(m.Name), "the ") {
			t.Errorf("stop-word candidate %q survived", m.Name)
		}
	}
}

func TestCompetitorKnownNamesSeeded(t *testing.T) {
	d := NewCompetitorDetector("Acme", []string{"Rival Labs"})

	// No mining pattern matches here, only the seeded name counts.
	got := d.Detect("Rival Labs shipped a new feature yesterday.", nil)
	if len(got) != 1 || got[0].Name != "Rival Labs" {
		t.Fatalf("got %+v, want seeded Rival Labs", got)
	}
}

func TestCompetitorKnownNameAbsent(t *testing.T) {
	d := NewCompetitorDetector("Acme", []string{"Rival Labs"})

	got := d.Detect("Acme has no peers in this niche.", nil)
	if len(got) != 0 {
		t.Fatalf("got %+v, want empty: seeded names need count > 0", got)
	}
}

func TestCompetitorSortedByCount(t *testing.T) {
	d := NewCompetitorDetector("Acme", []string{"Rival Labs", "Widget Inc"})

	text := "Widget Inc leads. Widget Inc grows. Rival Labs follows."
	got := d.Detect(text, nil)

	if len(got) != 2 {
		t.Fatalf("got %d competitors, want 2", len(got))
	}
	if got[0].Name != "Widget Inc" || got[1].Name != "Rival Labs" {
		t.Errorf("order = [%s, %s], want most mentioned first", got[0].Name, got[1].Name)
	}
}

func TestCompetitorContextsCapped(t *testing.T) {
	d := NewCompetitorDetector("Acme", []string{"Rival Labs"})

	text := strings.Repeat("Rival Labs did something notable. ", 6)
	got := d.Detect(text, nil)

	if len(got) != 1 {
		t.Fatalf("got %d competitors, want 1", len(got))
	}
	if len(got[0].Contexts) > 3 {
		t.Errorf("len(Contexts) = %d, want <= 3", len(got[0].Contexts))
	}
}

func TestCompetitorCitationAttachment(t *testing.T) {
	d := NewCompetitorDetector("Acme", []string{"Rival Labs"})

	citations := []models.Citation{
		{URL: "https://example.com/review", Title: "Rival Labs review", Snippet: "in depth"},
		{URL: "https://example.com/other", Title: "Unrelated", Snippet: "nothing here"},
	}
	got := d.Detect("Rival Labs keeps growing.", citations)

	if len(got) != 1 {
		t.Fatalf("got %d competitors, want 1", len(got))
	}
	want := []string{"https://example.com/review"}
	if len(got[0].Citations) != 1 || got[0].Citations[0] != want[0] {
		t.Errorf("Citations = %v, want %v", got[0].Citations, want)
	}
}

func TestCompetitorEmptyText(t *testing.T) {
	d := NewCompetitorDetector("Acme", nil)
	if got := d.Detect("", nil); len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}
