package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/parse"
	"freshops/internal/storage"
	"freshops/internal/util"
)

// Processor turns fetched intake mail into price records (auto-committed;
// unmatched lines are dropped by policy) or staged order review sheets
// (never auto-committed; orders wait for a human).
type Processor struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessor(db *storage.DB, cfg config.Config) *Processor {
	return &Processor{db: db, cfg: cfg}
}

type ProcessResult struct {
	IntakeID int64
	Kind     internal.IntakeKind
	Rows     int
}

func (p *Processor) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	row, err := p.db.MustIntakeByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return p.ProcessIntake(ctx, row)
}

func (p *Processor) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := p.db.ListIntakeByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processed := 0
	rows := 0
	for _, row := range pending {
		if provider != "" && row.Provider != provider {
			continue
		}
		res, err := p.ProcessIntake(ctx, row)
		if err != nil {
			return processed, rows, err
		}
		processed++
		rows += res.Rows
	}
	return processed, rows, nil
}

func (p *Processor) ProcessIntake(ctx context.Context, row internal.IntakeRow) (ProcessResult, error) {
	raw, err := os.ReadFile(row.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}
	env, err := ReadEnvelope(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	subject := env.Subject
	if strings.TrimSpace(subject) == "" {
		subject = row.Subject
	}

	det := Detect(subject, env.Text, env.AttachmentNames())
	switch det.Kind {
	case internal.IntakePriceList:
		return p.processPriceList(row, env)
	case internal.IntakeOrder:
		return p.processOrder(ctx, row, env)
	default:
		if err := p.db.UpdateIntakeStatus(row.ID, "skipped"); err != nil {
			return ProcessResult{}, err
		}
		return ProcessResult{IntakeID: row.ID, Kind: internal.IntakeUnknown}, nil
	}
}

func (p *Processor) processPriceList(row internal.IntakeRow, env Envelope) (ProcessResult, error) {
	products, err := p.db.ListProducts()
	if err != nil {
		return ProcessResult{}, err
	}

	lines := []string{}
	if env.Text != "" {
		lines = append(lines, util.SplitLines(env.Text)...)
	}
	if env.HTML != "" {
		lines = append(lines, PriceLinesFromHTML(env.HTML)...)
	}
	for _, att := range env.Attachments {
		if strings.HasSuffix(strings.ToLower(att.Name), ".pdf") {
			if extra, err := PriceLinesFromPDF(att.Content); err == nil {
				lines = append(lines, extra...)
			}
		}
	}

	parser := parse.NewPriceListParser(p.cfg, products)
	staged := parser.ParseLines(lines)

	inserted, err := staged.Commit(p.db, row.Sender)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := p.db.UpdateIntakeStatus(row.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	return ProcessResult{IntakeID: row.ID, Kind: internal.IntakePriceList, Rows: inserted}, nil
}

func (p *Processor) processOrder(ctx context.Context, row internal.IntakeRow, env Envelope) (ProcessResult, error) {
	customers, err := p.db.ListCustomers()
	if err != nil {
		return ProcessResult{}, err
	}
	products, err := p.db.ListProducts()
	if err != nil {
		return ProcessResult{}, err
	}

	history := func(ctx context.Context, fragment string) (map[string]struct{}, error) {
		return p.db.RecentProductCodes(fragment)
	}
	parser := parse.NewOrderParser(p.cfg, customers, products, history)
	result := parser.Parse(ctx, env.Text)

	outPath := filepath.Join(p.cfg.OutputDir, "intake", fmt.Sprintf("%d_order_review.xlsx", row.ID))
	if err := ExportOrderReviewXLSX(result, outPath); err != nil {
		return ProcessResult{}, err
	}
	if err := p.db.UpdateIntakeStatus(row.ID, "staged"); err != nil {
		return ProcessResult{}, err
	}
	return ProcessResult{IntakeID: row.ID, Kind: internal.IntakeOrder, Rows: result.Staging.Len()}, nil
}
