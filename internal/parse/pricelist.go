package parse

import (
	"regexp"
	"strconv"
	"strings"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/registry"
	"freshops/internal/staging"
	"freshops/internal/uom"
	"freshops/internal/util"
)

// PriceListParser is the sibling pipeline for supplier quotations. It is
// looser about the quantity token (compound pack-of-N forms like
// "80g x 50pkt" are one unit descriptor) and stricter about output: a line
// only yields a row when both a product match and a positive price exist.
// Everything else is dropped silently; that is filtering, not an error.
type PriceListParser struct {
	cfg     config.Config
	product *ProductResolver

	reCompound *regexp.Regexp
}

var rePriceToken = regexp.MustCompile(`(?i)(?:rm|\$)?\s*(\d+(?:\.\d+)?)(?:\s|$)`)

func NewPriceListParser(cfg config.Config, products []internal.ProductRecord) *PriceListParser {
	vocab := uom.New(cfg.UOMVocabulary)
	index := registry.BuildIndex(products)
	return &PriceListParser{
		cfg:     cfg,
		product: NewProductResolver(cfg, index),
		// "<num><uom>" optionally extended with "x <num><unit>".
		reCompound: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*` + vocab.Pattern() + `(?:\s*[xX]\s*\d+(?:\.\d+)?\s*[a-z]+)?)`),
	}
}

func (p *PriceListParser) Parse(text string) *staging.PriceStaging {
	return p.ParseLines(util.SplitLines(text))
}

func (p *PriceListParser) ParseLines(lines []string) *staging.PriceStaging {
	out := staging.NewPriceStaging()
	for _, line := range lines {
		if item, ok := p.parseLine(line); ok {
			out.Append(item)
		}
	}
	return out
}

func (p *PriceListParser) parseLine(line string) (internal.ParsedPriceItem, bool) {
	raw := util.NormalizeSpaces(line)
	if raw == "" {
		return internal.ParsedPriceItem{}, false
	}
	// Section headers and explanatory lines carry no quotation.
	if strings.HasPrefix(raw, "*") || strings.Contains(strings.ToLower(raw), "price:") {
		return internal.ParsedPriceItem{}, false
	}

	loc := p.reCompound.FindStringSubmatchIndex(raw)
	if loc == nil {
		return internal.ParsedPriceItem{}, false
	}
	unitToken := util.NormalizeSpaces(raw[loc[2]:loc[3]])
	name := strings.Trim(raw[:loc[0]], " -:")
	trailing := raw[loc[1]:]

	price := 0.0
	if m := rePriceToken.FindStringSubmatch(trailing); m != nil {
		price, _ = strconv.ParseFloat(m[1], 64)
	}
	if price <= 0 {
		return internal.ParsedPriceItem{}, false
	}

	product, _ := p.product.Resolve(name, nil)
	if product == nil {
		return internal.ParsedPriceItem{}, false
	}

	return internal.ParsedPriceItem{
		RawLine:     raw,
		ProductCode: product.Code,
		ProductName: product.Name,
		UOM:         unitToken,
		Price:       price,
	}, true
}
