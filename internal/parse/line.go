package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"freshops/internal/uom"
	"freshops/internal/util"
)

// TokenizedLine is the field split of one pasted item line, before product
// resolution. UOM is "" when no vocabulary token was recognized.
type TokenizedLine struct {
	RawLine  string
	Quantity float64
	UOM      string
	Price    float64
	NameText string
	Note     string
}

// LineTokenizer splits loosely formatted item lines like "2CTN MANGO GOLD",
// "avocado 5" or "Tomato 3kg rm12.50" with prioritized pattern rules. It
// never fails: any line yields a TokenizedLine, however sparse.
type LineTokenizer struct {
	vocab      uom.Vocabulary
	reQtyUOM   *regexp.Regexp
	reTrailQty *regexp.Regexp
}

var (
	reDateLine  = regexp.MustCompile(`^\s*(\d{1,2})\s*/\s*(\d{1,2})(?:\s*/\s*(\d{2,4}))?\s*$`)
	reBullet    = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s+`)
	reNote      = regexp.MustCompile(`\(([^)]*)\)\s*$`)
	reCurrency  = regexp.MustCompile(`(?i)(?:rm|\$)\s*(\d+(?:\.\d+)?)`)
	reBarePrice = regexp.MustCompile(`(?:^|\s)(\d+\.\d{1,2})(?:\s|$)`)
)

func NewLineTokenizer(vocab uom.Vocabulary) *LineTokenizer {
	return &LineTokenizer{
		vocab: vocab,
		// A quantity+UOM pair anchored at the start or after a separator,
		// optionally preceded by a standalone multiplier "x". The anchor
		// must not reach into the preceding word: "veg mix 2kg" keeps
		// "veg mix" intact.
		reQtyUOM:   regexp.MustCompile(`(?i)(?:^|[\s,;:])\s*(?:x\s*)?(\d+(?:\.\d+)?)\s*(` + vocab.Pattern() + `)(?:\b|$)`),
		reTrailQty: regexp.MustCompile(`(?:^|\s)(\d+)\s*$`),
	}
}

// DeliveryDate reports whether the whole line is a D/M[/Y] date. A line that
// matches the shape but is not a valid calendar date is not a date line; it
// falls through to item parsing.
func (t *LineTokenizer) DeliveryDate(line string) (time.Time, bool) {
	m := reDateLine.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := time.Now().Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || date.Month() != time.Month(month) {
		// Normalization moved the date: e.g. 31/2 rolled into March.
		return time.Time{}, false
	}
	return date, true
}

func (t *LineTokenizer) Tokenize(line string) TokenizedLine {
	out := TokenizedLine{RawLine: util.NormalizeSpaces(line), Quantity: 1}
	work := out.RawLine

	work = reBullet.ReplaceAllString(work, "")

	if m := reNote.FindStringSubmatch(work); m != nil {
		out.Note = strings.TrimSpace(m[1])
		work = strings.TrimSpace(reNote.ReplaceAllString(work, ""))
	}

	if loc := t.reQtyUOM.FindStringSubmatchIndex(work); loc != nil {
		qtyText := work[loc[2]:loc[3]]
		out.UOM = t.vocab.Canonical(work[loc[4]:loc[5]])
		if parsed, err := strconv.ParseFloat(qtyText, 64); err == nil {
			out.Quantity = parsed
		}
		prefix := strings.TrimSpace(work[:loc[0]])
		trailing := strings.TrimSpace(work[loc[1]:])

		trailing, out.Price = extractPrice(trailing)
		if prefix == "" {
			// Unit-first ordering: "2ctn mango gold".
			out.NameText = trailing
		} else {
			out.NameText = util.NormalizeSpaces(prefix + " " + trailing)
		}
	} else {
		out.NameText = work
		// No UOM anywhere: a trailing bare integer is a quantity alone
		// ("avocado 5").
		if m := t.reTrailQty.FindStringSubmatchIndex(out.NameText); m != nil {
			if parsed, err := strconv.ParseFloat(out.NameText[m[2]:m[3]], 64); err == nil {
				out.Quantity = parsed
				out.NameText = strings.TrimSpace(out.NameText[:m[0]])
			}
		}
	}

	if out.Price == 0 {
		// Ordering "name, price, no UOM" leaves the price inside the
		// name text; scan once more.
		out.NameText, out.Price = extractPrice(out.NameText)
	}

	out.NameText = strings.Trim(out.NameText, " -:")
	return out
}

// extractPrice pulls the first currency-prefixed number, or failing that a
// bare decimal with one or two fraction digits, out of the text. Returns the
// text with the price removed.
func extractPrice(text string) (string, float64) {
	if loc := reCurrency.FindStringSubmatchIndex(text); loc != nil {
		price, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
		if err == nil {
			return util.NormalizeSpaces(text[:loc[0]] + " " + text[loc[1]:]), price
		}
	}
	if loc := reBarePrice.FindStringSubmatchIndex(text); loc != nil {
		price, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
		if err == nil {
			return util.NormalizeSpaces(text[:loc[0]] + " " + text[loc[1]:]), price
		}
	}
	return text, 0
}

// looksLikeItemLine reports whether an unmatched header line should still be
// parsed as an item: it starts with a bullet marker or a digit.
func looksLikeItemLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if reBullet.MatchString(trimmed) {
		return true
	}
	// First rune, not first byte: "•avocado" starts with a multibyte bullet.
	r, _ := utf8.DecodeRuneInString(trimmed)
	return r == '-' || r == '*' || r == '•' || (r >= '0' && r <= '9')
}
