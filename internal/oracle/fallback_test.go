package oracle

import (
	"testing"

	"oracle/internal/domain"
)

func TestFallbackCatalogCoversAllPersonas(t *testing.T) {
	c, err := NewFallbackCatalog(1)
	if err != nil {
		t.Fatalf("NewFallbackCatalog: %v", err)
	}
	for _, p := range domain.Personas() {
		if len(c.Pool(p)) == 0 {
			t.Fatalf("persona %q has an empty pool", p)
		}
	}
}

func TestFallbackCatalogPick(t *testing.T) {
	c, err := NewFallbackCatalog(1)
	if err != nil {
		t.Fatalf("NewFallbackCatalog: %v", err)
	}

	for _, p := range domain.Personas() {
		pool := map[string]bool{}
		for _, text := range c.Pool(p) {
			pool[text] = true
		}
		for i := 0; i < 100; i++ {
			text, err := c.Pick(p)
			if err != nil {
				t.Fatalf("Pick(%q): %v", p, err)
			}
			if !pool[text] {
				t.Fatalf("Pick(%q) returned text outside the pool: %q", p, text)
			}
		}
	}

	if _, err := c.Pick(domain.Persona("void")); err == nil {
		t.Fatal("Pick for unknown persona: want error")
	}
}

// Every pre-written fallback must itself pass the safety filter, otherwise the
// always-answer guarantee would serve text the filter would have rejected.
func TestFallbackPoolsPassSafetyFilter(t *testing.T) {
	c, err := NewFallbackCatalog(1)
	if err != nil {
		t.Fatalf("NewFallbackCatalog: %v", err)
	}
	f := newTestFilter(t)
	for _, p := range domain.Personas() {
		for _, text := range c.Pool(p) {
			if verdict := f.Validate(text); !verdict.Safe {
				t.Errorf("persona %q fallback rejected (%s): %q", p, verdict.Reason, text)
			}
		}
	}
}
