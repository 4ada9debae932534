// Package registry caches the customer registry and product catalog pulled
// from the hosted backoffice, and exposes the lookup structures the parsing
// pipeline scores against.
package registry

import (
	"freshops/internal"
	"freshops/internal/util"
)

// Index precomputes normalized comparison strings over a product catalog.
// Products keeps catalog order so candidate iteration is deterministic:
// ties are broken by first-seen highest score.
type Index struct {
	Products             []internal.ProductRecord
	ByCode               map[string]internal.ProductRecord
	NormalizedNameByCode map[string]string
}

func BuildIndex(products []internal.ProductRecord) *Index {
	idx := &Index{
		Products:             append([]internal.ProductRecord(nil), products...),
		ByCode:               map[string]internal.ProductRecord{},
		NormalizedNameByCode: map[string]string{},
	}
	for _, p := range idx.Products {
		idx.ByCode[p.Code] = p
		idx.NormalizedNameByCode[p.Code] = util.Normalize(p.Name)
	}
	return idx
}
