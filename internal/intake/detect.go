package intake

import (
	"regexp"
	"strings"

	"freshops/internal"
)

type DetectResult struct {
	Kind   internal.IntakeKind
	Score  float64
	Reason string
}

var (
	priceKeywords = []string{"price list", "pricelist", "quotation", "harga", "quote"}
	orderKeywords = []string{"order", "po ", "delivery", "tambah", "pesan"}

	reBulletLine = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+\S`)
	reQtyLine    = regexp.MustCompile(`(?mi)^\s*\d+\s*[a-z]{1,4}\b`)
)

// Detect classifies an intake message as a supplier price list, a forwarded
// order text, or neither, from subject/body keywords and line shapes.
func Detect(subject, text string, attachmentNames []string) DetectResult {
	subjectLower := strings.ToLower(subject)
	textLower := strings.ToLower(text)

	priceScore := 0.0
	for _, kw := range priceKeywords {
		if strings.Contains(subjectLower, kw) {
			priceScore += 0.4
		}
		if strings.Contains(textLower, kw) {
			priceScore += 0.2
		}
	}
	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".pdf") || strings.HasSuffix(ln, ".html") {
			priceScore += 0.25
			break
		}
	}

	orderScore := 0.0
	for _, kw := range orderKeywords {
		if strings.Contains(subjectLower, kw) {
			orderScore += 0.3
		}
	}
	if reBulletLine.MatchString(text) {
		orderScore += 0.25
	}
	if hits := len(reQtyLine.FindAllString(text, 4)); hits >= 2 {
		orderScore += 0.4
	} else if hits == 1 {
		orderScore += 0.2
	}

	switch {
	case priceScore >= 0.4 && priceScore >= orderScore:
		return DetectResult{Kind: internal.IntakePriceList, Score: clamp(priceScore), Reason: "rules_pricelist"}
	case orderScore >= 0.4:
		return DetectResult{Kind: internal.IntakeOrder, Score: clamp(orderScore), Reason: "rules_order"}
	default:
		return DetectResult{Kind: internal.IntakeUnknown, Score: 0, Reason: "rules_negative"}
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
