package ontology

import (
	"testing"

	"github.com/prosthocare/prostho-api/planner/entities"
)

func TestNegotiate(t *testing.T) {
	testCases := []struct {
		header string
		locale string
	}{
		{"fr", "fr"},
		{"fr-FR", "fr"},
		{"fr-CA, en;q=0.7", "fr"},
		{"en", "en"},
		{"en-GB", "en"},
		{"de", "en"},
		{"", "en"},
		{"garbage;;;", "en"},
	}

	for _, tc := range testCases {
		if got := Negotiate(tc.header); got != tc.locale {
			t.Errorf("Negotiate(%q): expected %s, got %s", tc.header, tc.locale, got)
		}
	}
}

func TestForLocaleCoversAllKinds(t *testing.T) {
	for _, locale := range []string{"en", "fr"} {
		tables := ForLocale(locale)
		if tables.Locale != locale {
			t.Errorf("Expected locale %s, got %s", locale, tables.Locale)
		}

		labeled := make(map[string]bool)
		for _, entry := range tables.Kinds {
			if entry.Label == "" {
				t.Errorf("Locale %s: kind %s has no label", locale, entry.ID)
			}
			labeled[entry.ID] = true
		}
		for _, kind := range entities.AllKinds {
			if !labeled[string(kind)] {
				t.Errorf("Locale %s: kind %s has no ontology entry", locale, kind)
			}
		}
	}
}

func TestForLocaleFallsBackToEnglish(t *testing.T) {
	tables := ForLocale("es")
	if tables.Locale != "en" {
		t.Errorf("Expected fallback locale en, got %s", tables.Locale)
	}
}

func TestLocalesHaveSameRuleCoverage(t *testing.T) {
	en := ForLocale("en")
	fr := ForLocale("fr")

	if len(en.Rules) != len(fr.Rules) {
		t.Fatalf("Expected matching rule coverage, got %d en and %d fr", len(en.Rules), len(fr.Rules))
	}
	frIDs := make(map[string]bool)
	for _, entry := range fr.Rules {
		frIDs[entry.ID] = true
	}
	for _, entry := range en.Rules {
		if !frIDs[entry.ID] {
			t.Errorf("Rule %s labeled in en but not fr", entry.ID)
		}
	}
}
