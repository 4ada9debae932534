package intake

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"

	"freshops/internal/util"
)

type Attachment struct {
	Name    string
	Content []byte
}

type Envelope struct {
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

func (e Envelope) AttachmentNames() []string {
	out := make([]string, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		out = append(out, a.Name)
	}
	return out
}

// ReadEnvelope parses a raw MIME message into the parts the processor cares
// about.
func ReadEnvelope(raw []byte) (Envelope, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Envelope{}, err
	}

	out := Envelope{
		Subject: env.GetHeader("Subject"),
		Text:    env.Text,
		HTML:    env.HTML,
	}
	for _, att := range env.Attachments {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = "attachment"
		}
		out.Attachments = append(out.Attachments, Attachment{Name: name, Content: att.Content})
	}
	return out, nil
}

// PriceLinesFromPDF flattens a PDF attachment into candidate price-list
// lines for the text pipeline.
func PriceLinesFromPDF(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		out = append(out, util.SplitLines(text)...)
	}
	return out, nil
}

// PriceLinesFromHTML pulls price rows out of HTML tables (portal exports)
// and re-serializes each as a plain "<name> <unit> <price>" line so a single
// resolution path handles every source.
func PriceLinesFromHTML(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []string{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
		})

		nameIdx := findHeaderIndex(headers, []string{"product", "item", "name", "description"})
		unitIdx := findHeaderIndex(headers, []string{"uom", "unit", "pack", "size"})
		priceIdx := findHeaderIndex(headers, []string{"price", "cost", "rate", "rm"})

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}

			name := pickCell(cells, nameIdx, 0)
			unit := pickCell(cells, unitIdx, -1)
			price := pickCell(cells, priceIdx, -1)
			if name == "" || unit == "" || price == "" {
				return
			}
			out = append(out, fmt.Sprintf("%s %s %s", name, unit, price))
		})
	})

	return out
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int, fallback int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	if fallback >= 0 && fallback < len(cells) {
		return strings.TrimSpace(cells[fallback])
	}
	return ""
}
