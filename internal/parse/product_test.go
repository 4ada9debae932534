package parse

import (
	"testing"

	"freshops/internal"
	"freshops/internal/match"
	"freshops/internal/registry"
)

func newTestProductResolver(products []internal.ProductRecord) *ProductResolver {
	return NewProductResolver(testConfig(), registry.BuildIndex(products))
}

func TestProductResolveExact(t *testing.T) {
	r := newTestProductResolver(testProducts())

	product, score := r.Resolve("mango gold susu", nil)
	if product == nil || product.Code != "MANGO-01" || score != match.ScoreExact {
		t.Fatalf("got %+v score=%v", product, score)
	}
}

func TestProductResolveIgnoresBracketedText(t *testing.T) {
	r := newTestProductResolver(testProducts())

	product, _ := r.Resolve("avocado (ripe ones) [urgent]", nil)
	if product == nil || product.Code != "AVO-01" {
		t.Fatalf("got %+v", product)
	}
}

func TestProductResolveBelowThreshold(t *testing.T) {
	r := newTestProductResolver(testProducts())

	if product, _ := r.Resolve("mystery item", nil); product != nil {
		t.Fatalf("expected no match, got %+v", product)
	}
	if product, _ := r.Resolve("", nil); product != nil {
		t.Fatalf("empty text must not resolve, got %+v", product)
	}
}

func TestProductResolveHistoryBoostBreaksTie(t *testing.T) {
	products := []internal.ProductRecord{
		{Code: "MNG-PLAIN", Name: "Mango", BaseUOM: "kg"},
		{Code: "MNG-SUSU", Name: "Mango Gold Susu", BaseUOM: "ctn"},
	}
	r := newTestProductResolver(products)

	// Both candidates score by containment; without history the first
	// catalog entry wins, with history the repeat purchase does.
	product, _ := r.Resolve("mango gold", nil)
	if product == nil || product.Code != "MNG-PLAIN" {
		t.Fatalf("without history got %+v", product)
	}

	history := map[string]struct{}{"MNG-SUSU": {}}
	product, score := r.Resolve("mango gold", history)
	if product == nil || product.Code != "MNG-SUSU" {
		t.Fatalf("with history got %+v", product)
	}
	if score != match.ScoreContain+testConfig().HistoryBoost {
		t.Fatalf("score = %v", score)
	}
}

func TestProductResolveExactBeatsBoost(t *testing.T) {
	products := []internal.ProductRecord{
		{Code: "MNG-PLAIN", Name: "Mango", BaseUOM: "kg"},
		{Code: "MNG-SUSU", Name: "Mango Gold Susu", BaseUOM: "ctn"},
	}
	r := newTestProductResolver(products)

	// The boosted containment on "Mango" (80+40) must not outbid the
	// verbatim name match.
	history := map[string]struct{}{"MNG-PLAIN": {}}
	product, score := r.Resolve("mango gold susu", history)
	if product == nil || product.Code != "MNG-SUSU" || score != match.ScoreExact {
		t.Fatalf("got %+v score=%v", product, score)
	}
}

func TestProductResolveNoBoostBelowFloor(t *testing.T) {
	r := newTestProductResolver(testProducts())

	// History never rescues text that shares nothing with the name.
	history := map[string]struct{}{"TOM-01": {}}
	if product, _ := r.Resolve("mystery item", history); product != nil {
		t.Fatalf("expected no match, got %+v", product)
	}
}
