// Package parse turns pasted free-text orders and supplier price lists into
// staged, human-reviewable rows. The pipeline is synchronous and pure over
// pre-loaded registry data; the only external touch is the optional history
// lookup, which degrades to no boost on failure.
package parse

import (
	"context"
	"time"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/registry"
	"freshops/internal/staging"
	"freshops/internal/uom"
	"freshops/internal/util"
)

// OrderResult is everything one parse invocation produced: the resolved
// customer (or nil), a whole-order delivery-date override (or nil), and the
// staged rows awaiting confirmation.
type OrderResult struct {
	Customer      *internal.CustomerRecord
	CustomerScore float64
	DeliveryDate  *time.Time
	Staging       *staging.OrderStaging
}

type OrderParser struct {
	cfg       config.Config
	customers []internal.CustomerRecord
	index     *registry.Index
	history   HistoryFunc

	tokenizer *LineTokenizer
	customer  *CustomerResolver
	product   *ProductResolver
}

func NewOrderParser(cfg config.Config, customers []internal.CustomerRecord, products []internal.ProductRecord, history HistoryFunc) *OrderParser {
	index := registry.BuildIndex(products)
	return &OrderParser{
		cfg:       cfg,
		customers: customers,
		index:     index,
		history:   history,
		tokenizer: NewLineTokenizer(uom.New(cfg.UOMVocabulary)),
		customer:  NewCustomerResolver(cfg),
		product:   NewProductResolver(cfg, index),
	}
}

// Parse runs the full order pipeline over one pasted message: segment lines,
// resolve the customer from line one, tokenize and resolve each item line,
// and stage the result. Every item line stages a row; lines the pipeline
// cannot resolve stay visible with an empty product code.
func (p *OrderParser) Parse(ctx context.Context, text string) OrderResult {
	result := OrderResult{Staging: staging.NewOrderStaging()}

	lines := util.SplitLines(text)
	if len(lines) == 0 {
		return result
	}

	var history map[string]struct{}
	customer, score := p.customer.Resolve(lines[0], p.customers)
	if customer != nil {
		result.Customer = customer
		result.CustomerScore = score
		lines = lines[1:]
		history = p.fetchHistory(ctx, customer.CompanyName)
	} else if !looksLikeItemLine(lines[0]) {
		// An unmatched header is consumed and discarded, not parsed as
		// an item.
		lines = lines[1:]
	}

	for _, line := range lines {
		if date, ok := p.tokenizer.DeliveryDate(line); ok {
			result.DeliveryDate = &date
			continue
		}

		tok := p.tokenizer.Tokenize(line)
		item := internal.ParsedOrderItem{
			RawLine:  tok.RawLine,
			Quantity: tok.Quantity,
			UOM:      tok.UOM,
			Price:    tok.Price,
			Note:     tok.Note,
		}

		matchText := tok.NameText
		if tok.Note != "" {
			matchText = util.NormalizeSpaces(matchText + " " + tok.Note)
		}
		if product, productScore := p.product.Resolve(matchText, history); product != nil {
			item.ProductCode = product.Code
			item.ProductName = product.Name
			item.Score = productScore
			if item.UOM == "" {
				item.UOM = product.BaseUOM
			}
		}
		if item.UOM == "" {
			item.UOM = p.cfg.DefaultUOM
		}

		result.Staging.Append(item)
	}

	return result
}

// fetchHistory is the single asynchronous boundary of the pipeline: one read
// against the record store, bounded by a timeout. Any failure degrades to an
// empty history rather than aborting the parse.
func (p *OrderParser) fetchHistory(ctx context.Context, nameFragment string) map[string]struct{} {
	if p.history == nil {
		return nil
	}
	timeout := time.Duration(p.cfg.HistoryTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	codes, err := p.history(ctx, nameFragment)
	if err != nil {
		return nil
	}
	return codes
}
