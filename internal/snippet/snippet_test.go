package snippet

import (
	"math/rand"
	"testing"

	"github.com/verte-zerg/devtype/internal/model"
)

func TestCatalogNonEmpty(t *testing.T) {
	for _, s := range catalog {
		if s.Code == "" {
			t.Fatalf("snippet %s has empty code", s.ID)
		}
		if s.Language == "" {
			t.Fatalf("snippet %s has empty language", s.ID)
		}
	}
}

func TestNextForLanguage(t *testing.T) {
	src := NewSource()
	for _, lang := range src.Languages() {
		s, err := src.Next(lang)
		if err != nil {
			t.Fatalf("next %s: %v", lang, err)
		}
		if s.Language != lang {
			t.Fatalf("expected %s snippet, got %s", lang, s.Language)
		}
	}
}

func TestNextAnyDrawsAcrossLanguages(t *testing.T) {
	src := newSource(catalog, rand.New(rand.NewSource(1)))
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		s, err := src.Next(model.LanguageAny)
		if err != nil {
			t.Fatalf("next any: %v", err)
		}
		seen[s.Language] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected multiple languages from %q selector, got %v", model.LanguageAny, seen)
	}
}

func TestNextUnknownLanguage(t *testing.T) {
	src := NewSource()
	if _, err := src.Next("cobol"); err == nil {
		t.Fatalf("expected error for unknown language")
	}
}
