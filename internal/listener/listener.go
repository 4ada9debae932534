package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freshops/internal/config"
	"freshops/internal/connectors"
	gmailconnector "freshops/internal/connectors/gmail"
	imapconnector "freshops/internal/connectors/imap"
	"freshops/internal/intake"
	"freshops/internal/storage"
)

// Service polls the shared intake mailbox: suppliers email price lists,
// staff forward order texts. Each cycle fetches new mail and runs the
// intake processor over whatever is pending.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("intake cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.IntakeIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.IntakeProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(provider, s.cfg.IntakeLabel, s.cfg.IntakeFetchMax)
	if err != nil {
		return err
	}

	processor := intake.NewProcessor(s.db, s.cfg)
	processed, rows, err := processor.ProcessPending(ctx, s.cfg.IntakeProcessBatch, provider)
	if err != nil {
		return err
	}

	fmt.Printf("intake cycle done provider=%s fetched=%d stored=%d known=%d processed=%d rows=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, fetchResult.Known, processed, rows)
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported intake provider: %s", provider)
	}
}
