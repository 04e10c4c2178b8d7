// Package snippet provides the code snippets users type against.
package snippet

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/devtype/internal/model"
)

// Snippet is one unit of target text. Code keeps its original newlines and
// indentation.
type Snippet struct {
	ID       string
	Language string
	Code     string
}

// Source picks random snippets for a language selector.
type Source struct {
	rnd    *rand.Rand
	byLang map[string][]Snippet
	all    []Snippet
}

// NewSource returns a Source over the built-in catalog, seeded with the
// current time.
func NewSource() *Source {
	return newSource(catalog, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newSource(snippets []Snippet, rnd *rand.Rand) *Source {
	byLang := map[string][]Snippet{}
	for _, s := range snippets {
		byLang[s.Language] = append(byLang[s.Language], s)
	}
	return &Source{
		rnd:    rnd,
		byLang: byLang,
		all:    snippets,
	}
}

// Languages lists the catalog languages in sorted order.
func (s *Source) Languages() []string {
	langs := make([]string, 0, len(s.byLang))
	for lang := range s.byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Next returns a random snippet for the selector. The selector is either a
// catalog language or model.LanguageAny. The returned code is never empty.
func (s *Source) Next(selector string) (Snippet, error) {
	pool := s.all
	if selector != model.LanguageAny {
		var ok bool
		pool, ok = s.byLang[selector]
		if !ok {
			return Snippet{}, fmt.Errorf("unknown language %q", selector)
		}
	}
	if len(pool) == 0 {
		return Snippet{}, fmt.Errorf("no snippets available for %q", selector)
	}
	return pool[s.rnd.Intn(len(pool))], nil
}
